package sessionkit

import (
	"context"
	"strconv"

	internalflows "github.com/edusdk/sessionkit/internal/flows"
	"github.com/edusdk/sessionkit/jwt"
)

// EnsureFresh describes the ensurefresh operation and its observable behavior.
//
// EnsureFresh may return an error when input validation, dependency calls, or security checks fail.
// EnsureFresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnsureFresh(ctx context.Context) string {
	if e == nil {
		return ""
	}

	e.mu.Lock()
	if e.status != StatusAuthenticated || e.token == nil {
		e.mu.Unlock()
		return ""
	}
	access := e.token.Access
	refresh := e.token.Refresh
	gen := e.generation
	csid := e.clientSessionID
	userID := userIDOf(e.user)
	role := roleOf(e.user)
	e.mu.Unlock()

	result := internalflows.RunRefresh(ctx, access, refresh, internalflows.RefreshDeps{
		ExpiresAt: jwt.ExpiresAt,
		Now:       e.now,
		Threshold: e.config.Refresh.Threshold,
		Call: func(ctx context.Context, refreshToken string) (string, string, error) {
			pair, err := e.api.Refresh(ctx, refreshToken)
			if err != nil {
				return "", "", err
			}
			if pair == nil {
				return "", "", NewAPIError(ErrorKindServer, 0, "empty refresh response", nil)
			}
			return pair.Access, pair.Refresh, nil
		},
		Gate: e.cooldown,
		Warn: e.warnf,
	})

	switch {
	case result.Failure == internalflows.RefreshFailureDecode:
		// An unreadable token is the server's to reject, not ours to drop.
		e.metricInc(MetricRefreshPassthrough)
		return access

	case result.Failure == internalflows.RefreshFailureCooldown:
		e.metricInc(MetricRefreshCooldown)
		e.emitAudit(ctx, auditEventRefreshCooldown, false, userID, role, csid, result.Err, nil)
		return access

	case result.Failure == internalflows.RefreshFailureCall:
		e.metricInc(MetricRefreshSwallowed)
		e.emitAudit(ctx, auditEventRefreshSwallowed, false, userID, role, csid, result.Err, nil)
		return access

	case !result.Refreshed:
		e.metricInc(MetricRefreshSkippedFresh)
		return access
	}

	e.metricObserve(MetricRefreshLatency, result.Latency)

	newPair := TokenPair{Access: result.Access, Refresh: result.Refresh}

	e.mu.Lock()
	if e.generation != gen || e.status != StatusAuthenticated {
		e.mu.Unlock()
		e.metricInc(MetricRefreshDiscardedStale)
		e.emitAudit(ctx, auditEventRefreshDiscardedStale, false, userID, role, csid, nil, nil)
		return access
	}
	e.token = &newPair
	e.generation++
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if err := e.tokenStore.SetPair(ctx, newPair); err != nil {
		e.warnf("sessionkit: token store pair write failed: %v", err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, role, csid, nil, func() map[string]string {
		return map[string]string{
			"latency_ms": strconv.FormatInt(result.Latency.Milliseconds(), 10),
		}
	})

	e.notify(snap)
	return result.Access
}

// ValidateSession describes the validatesession operation and its observable behavior.
//
// ValidateSession may return an error when input validation, dependency calls, or security checks fail.
// ValidateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateSession(ctx context.Context) (*User, error) {
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
	e.mu.Unlock()

	user, err := e.api.ValidateToken(ctx, access)
	if err != nil {
		if IsUnauthorized(err) {
			e.metricInc(MetricValidateRejected)
			e.emitAudit(ctx, auditEventValidateRejected, false, "", "", csid, err, nil)
			e.SignOut(ctx)
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if user == nil {
		return nil, NewAPIError(ErrorKindServer, 0, "validate response missing user", nil)
	}

	u := *user

	e.mu.Lock()
	stale := e.generation != gen || e.status != StatusAuthenticated
	if !stale {
		cu := u
		e.user = &cu
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	if stale {
		out := u
		return &out, nil
	}

	if err := e.tokenStore.SetUser(ctx, u); err != nil {
		e.warnf("sessionkit: token store user write failed: %v", err)
	}

	e.metricInc(MetricValidateSuccess)
	e.emitAudit(ctx, auditEventValidateSuccess, true, u.ID, u.Role, csid, nil, nil)

	e.notify(snap)

	out := u
	return &out, nil
}
