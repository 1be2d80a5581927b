package sessionkit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	internalflows "github.com/edusdk/sessionkit/internal/flows"
)

func userIDOf(u *User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func roleOf(u *User) Role {
	if u == nil {
		return ""
	}
	return u.Role
}

// SignIn describes the signin operation and its observable behavior.
//
// SignIn may return an error when input validation, dependency calls, or security checks fail.
// SignIn does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SignIn(ctx context.Context, pair TokenPair, user *User) {
	if e == nil {
		return
	}

	csid := uuid.NewString()

	e.mu.Lock()
	e.status = StatusAuthenticated
	token := pair
	e.token = &token
	if user != nil {
		u := *user
		e.user = &u
	} else {
		e.user = nil
	}
	e.clientSessionID = csid
	e.generation++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.persistSession(ctx, pair, user)

	e.metricInc(MetricSignIn)
	e.emitAudit(ctx, auditEventSignIn, true, userIDOf(user), roleOf(user), csid, nil, func() map[string]string {
		return map[string]string{
			"onboarding_pending": strconv.FormatBool(user == nil),
		}
	})

	e.notify(snap)
}

// SignOut describes the signout operation and its observable behavior.
//
// SignOut may return an error when input validation, dependency calls, or security checks fail.
// SignOut does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SignOut(ctx context.Context) {
	if e == nil {
		return
	}

	e.mu.Lock()
	userID := userIDOf(e.user)
	role := roleOf(e.user)
	csid := e.clientSessionID
	e.signOutLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.removeStoredSession(ctx)

	e.metricInc(MetricSignOut)
	e.emitAudit(ctx, auditEventSignOut, true, userID, role, csid, nil, nil)

	e.notify(snap)
}

// signOutLocked clears the in-memory session. Caller must hold e.mu.
// The onboarding context and scratch drafts deliberately survive.
func (e *Engine) signOutLocked() {
	e.status = StatusUnauthenticated
	e.token = nil
	e.user = nil
	e.clientSessionID = ""
	e.generation++
}

// persistSession writes the pair and profile to the token store.
// Failures are logged and never block the in-memory transition; the
// next hydrate reconciles against whatever actually landed.
func (e *Engine) persistSession(ctx context.Context, pair TokenPair, user *User) {
	if err := e.tokenStore.SetPair(ctx, pair); err != nil {
		e.warnf("sessionkit: token store pair write failed: %v", err)
	}
	if user != nil {
		if err := e.tokenStore.SetUser(ctx, *user); err != nil {
			e.warnf("sessionkit: token store user write failed: %v", err)
		}
		return
	}
	if err := e.tokenStore.RemoveUser(ctx); err != nil {
		e.warnf("sessionkit: token store user remove failed: %v", err)
	}
}

func (e *Engine) removeStoredSession(ctx context.Context) {
	if err := e.tokenStore.RemovePair(ctx); err != nil {
		e.warnf("sessionkit: token store pair remove failed: %v", err)
	}
	if err := e.tokenStore.RemoveUser(ctx); err != nil {
		e.warnf("sessionkit: token store user remove failed: %v", err)
	}
}

// Hydrate describes the hydrate operation and its observable behavior.
//
// Hydrate may return an error when input validation, dependency calls, or security checks fail.
// Hydrate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Hydrate(ctx context.Context) {
	if e == nil {
		return
	}

	var loadedUser *User
	var validatedUser *User

	result := internalflows.RunHydrate(ctx, internalflows.HydrateDeps{
		LoadPair: func(ctx context.Context) (string, string, error) {
			pair, err := e.tokenStore.Pair(ctx)
			if err != nil {
				return "", "", err
			}
			if pair == nil {
				return "", "", nil
			}
			return pair.Access, pair.Refresh, nil
		},
		LoadUser: func(ctx context.Context) (bool, error) {
			user, err := e.tokenStore.User(ctx)
			if err != nil {
				return false, err
			}
			loadedUser = user
			return user != nil, nil
		},
		Validate: func(ctx context.Context, accessToken string) error {
			user, err := e.api.ValidateToken(ctx, accessToken)
			if err != nil {
				return err
			}
			validatedUser = user
			return nil
		},
		ValidateEagerly: e.config.Hydrate.ValidateEagerly,
		IsUnauthorized:  IsUnauthorized,
		Warn:            e.warnf,
	})

	switch {
	case result.Failure == internalflows.HydrateFailureStorage:
		e.hydrateFallback(ctx, "storage", result.Err)

	case result.Failure == internalflows.HydrateFailureRejected:
		e.metricInc(MetricValidateRejected)
		e.emitAudit(ctx, auditEventValidateRejected, false, userIDOf(loadedUser), roleOf(loadedUser), "", result.Err, nil)
		e.removeStoredSession(ctx)
		e.hydrateFallback(ctx, "rejected", result.Err)

	case result.Access == "":
		e.hydrateFallback(ctx, "absent", nil)

	default:
		user := loadedUser
		if validatedUser != nil {
			user = validatedUser
		}
		csid := uuid.NewString()

		e.mu.Lock()
		e.status = StatusAuthenticated
		e.token = &TokenPair{Access: result.Access, Refresh: result.Refresh}
		if user != nil {
			u := *user
			e.user = &u
		} else {
			e.user = nil
		}
		e.clientSessionID = csid
		e.generation++
		snap := e.snapshotLocked()
		e.mu.Unlock()

		if validatedUser != nil {
			e.metricInc(MetricValidateSuccess)
			if err := e.tokenStore.SetUser(ctx, *validatedUser); err != nil {
				e.warnf("sessionkit: token store user write failed: %v", err)
			}
		}

		e.metricInc(MetricHydrateRestored)
		e.emitAudit(ctx, auditEventHydrateRestored, true, userIDOf(user), roleOf(user), csid, nil, func() map[string]string {
			return map[string]string{
				"profile":   strconv.FormatBool(user != nil),
				"validated": strconv.FormatBool(result.Validated),
			}
		})

		e.notify(snap)
	}
}

// hydrateFallback lands the machine in the signed-out state when
// nothing trustworthy could be restored.
func (e *Engine) hydrateFallback(ctx context.Context, reason string, cause error) {
	e.mu.Lock()
	e.signOutLocked()
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.metricInc(MetricHydrateFallback)
	e.emitAudit(ctx, auditEventHydrateFallback, cause == nil, "", "", "", cause, func() map[string]string {
		return map[string]string{"reason": reason}
	})

	e.notify(snap)
}

// SetOnboardingContext describes the setonboardingcontext operation and its observable behavior.
//
// SetOnboardingContext may return an error when input validation, dependency calls, or security checks fail.
// SetOnboardingContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetOnboardingContext(ctx context.Context, oc OnboardingContext) error {
	if e == nil {
		return ErrEngineNotReady
	}

	payload, err := json.Marshal(oc)
	if err != nil {
		return err
	}

	e.mu.Lock()
	cached := oc
	e.onboardingContext = &cached
	csid := e.clientSessionID
	snap := e.snapshotLocked()
	e.mu.Unlock()

	err = e.scratchStore.SetItem(ctx, e.config.Storage.OnboardingContextKey, payload)

	e.emitAudit(ctx, auditEventOnboardingContextSaved, err == nil, "", "", csid, err, func() map[string]string {
		return map[string]string{"provider": oc.Provider}
	})
	e.notify(snap)
	return err
}

// ClearOnboardingContext describes the clearonboardingcontext operation and its observable behavior.
//
// ClearOnboardingContext may return an error when input validation, dependency calls, or security checks fail.
// ClearOnboardingContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearOnboardingContext(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	e.onboardingContext = nil
	csid := e.clientSessionID
	snap := e.snapshotLocked()
	e.mu.Unlock()

	err := e.scratchStore.RemoveItem(ctx, e.config.Storage.OnboardingContextKey)

	e.emitAudit(ctx, auditEventOnboardingContextCleared, err == nil, "", "", csid, err, nil)
	e.notify(snap)
	return err
}

// LoadOnboardingContext describes the loadonboardingcontext operation and its observable behavior.
//
// LoadOnboardingContext may return an error when input validation, dependency calls, or security checks fail.
// LoadOnboardingContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoadOnboardingContext(ctx context.Context) (*OnboardingContext, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	payload, err := e.scratchStore.Item(ctx, e.config.Storage.OnboardingContextKey)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}

	var oc OnboardingContext
	if err := json.Unmarshal(payload, &oc); err != nil {
		return nil, fmt.Errorf("decode onboarding context: %w", err)
	}

	e.mu.Lock()
	cached := oc
	e.onboardingContext = &cached
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)

	out := oc
	return &out, nil
}

// SetDraftData describes the setdraftdata operation and its observable behavior.
//
// SetDraftData may return an error when input validation, dependency calls, or security checks fail.
// SetDraftData does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SetDraftData(ctx context.Context, data []byte) error {
	if e == nil {
		return ErrEngineNotReady
	}

	err := e.scratchStore.SetItem(ctx, e.config.Storage.DraftDataKey, data)
	if err == nil {
		e.metricInc(MetricDraftSaved)
	}
	e.emitAudit(ctx, auditEventDraftSaved, err == nil, "", "", "", err, nil)
	return err
}

// DraftData describes the draftdata operation and its observable behavior.
//
// DraftData may return an error when input validation, dependency calls, or security checks fail.
// DraftData does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DraftData(ctx context.Context) ([]byte, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return e.scratchStore.Item(ctx, e.config.Storage.DraftDataKey)
}

// ClearDraftData describes the cleardraftdata operation and its observable behavior.
//
// ClearDraftData may return an error when input validation, dependency calls, or security checks fail.
// ClearDraftData does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearDraftData(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}

	err := e.scratchStore.RemoveItem(ctx, e.config.Storage.DraftDataKey)
	if err == nil {
		e.metricInc(MetricDraftCleared)
	}
	e.emitAudit(ctx, auditEventDraftCleared, err == nil, "", "", "", err, nil)
	return err
}
