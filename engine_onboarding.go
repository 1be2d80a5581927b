package sessionkit

import (
	"context"
	"encoding/json"
	"strconv"

	internalflows "github.com/edusdk/sessionkit/internal/flows"
)

// CompleteOnboarding describes the completeonboarding operation and its observable behavior.
//
// CompleteOnboarding may return an error when input validation, dependency calls, or security checks fail.
// CompleteOnboarding does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteOnboarding(ctx context.Context, req ProfileRequest) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	access := e.EnsureFresh(ctx)
	if access == "" {
		return nil, ErrNoSession
	}

	e.mu.Lock()
	gen := e.generation
	csid := e.clientSessionID
	var existing *User
	if e.user != nil {
		u := *e.user
		existing = &u
	}
	e.mu.Unlock()

	if existing != nil {
		// A full profile is already attached; nothing left to complete.
		return existing, nil
	}
	if !req.Role.Valid() {
		err := NewAPIError(ErrorKindValidation, 0, "unknown role", nil)
		e.metricInc(MetricOnboardingFailure)
		e.emitAudit(ctx, auditEventOnboardingFailure, false, "", req.Role, csid, err, func() map[string]string {
			return map[string]string{"reason": "invalid_role"}
		})
		return nil, err
	}

	var created *User

	result := internalflows.RunOnboarding(ctx, internalflows.OnboardingDeps{
		CreateProfile: func(ctx context.Context) error {
			user, err := e.api.CreateProfile(ctx, access, req)
			if err != nil {
				return err
			}
			created = user
			return nil
		},
		FetchProfile: func(ctx context.Context) error {
			user, err := e.api.ValidateToken(ctx, access)
			if err != nil {
				return err
			}
			created = user
			return nil
		},
		PersistDraft: func(ctx context.Context) error {
			payload, err := json.Marshal(req)
			if err != nil {
				return err
			}
			return e.SetDraftData(ctx, payload)
		},
		IsConflict: IsConflict,
		IsNetwork:  IsNetwork,
		Warn:       e.warnf,
	})

	switch result.Failure {
	case internalflows.OnboardingFailureConflictFetch:
		e.metricInc(MetricOnboardingConflict)
		e.metricInc(MetricOnboardingFailure)
		e.emitAudit(ctx, auditEventOnboardingFailure, false, "", req.Role, csid, result.Err, func() map[string]string {
			return map[string]string{"reason": "conflict_fetch_failed"}
		})
		return nil, result.Err

	case internalflows.OnboardingFailureNetwork:
		e.metricInc(MetricOnboardingFailure)
		e.emitAudit(ctx, auditEventOnboardingFailure, false, "", req.Role, csid, result.Err, func() map[string]string {
			return map[string]string{
				"reason":      "network",
				"draft_saved": strconv.FormatBool(result.DraftSaved),
			}
		})
		return nil, result.Err

	case internalflows.OnboardingFailureAPI:
		e.metricInc(MetricOnboardingFailure)
		e.emitAudit(ctx, auditEventOnboardingFailure, false, "", req.Role, csid, result.Err, nil)
		return nil, result.Err
	}

	if created == nil {
		err := NewAPIError(ErrorKindServer, 0, "profile response missing user", nil)
		e.metricInc(MetricOnboardingFailure)
		e.emitAudit(ctx, auditEventOnboardingFailure, false, "", req.Role, csid, err, nil)
		return nil, err
	}

	u := *created

	e.mu.Lock()
	stale := e.generation != gen || e.status != StatusAuthenticated
	if !stale {
		cu := u
		e.user = &cu
		e.onboardingContext = nil
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if stale {
		// The session that started this onboarding was replaced while the
		// request was in flight. The server-side profile exists either way,
		// so hand it back without touching the new session's state.
		e.warnf("sessionkit: onboarding completed for a superseded session, state unchanged")
		out := u
		return &out, nil
	}

	if err := e.tokenStore.SetUser(ctx, u); err != nil {
		e.warnf("sessionkit: token store user write failed: %v", err)
	}
	if err := e.scratchStore.RemoveItem(ctx, e.config.Storage.OnboardingContextKey); err != nil {
		e.warnf("sessionkit: onboarding context remove failed: %v", err)
	}
	if err := e.scratchStore.RemoveItem(ctx, e.config.Storage.DraftDataKey); err != nil {
		e.warnf("sessionkit: draft remove failed: %v", err)
	}

	e.metricInc(MetricOnboardingCompleted)
	if result.Conflict {
		e.metricInc(MetricOnboardingConflict)
		e.emitAudit(ctx, auditEventOnboardingConflictResumed, true, u.ID, u.Role, csid, nil, nil)
	} else {
		e.emitAudit(ctx, auditEventOnboardingCompleted, true, u.ID, u.Role, csid, nil, nil)
	}

	e.notify(snap)

	out := u
	return &out, nil
}
