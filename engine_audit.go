package sessionkit

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/edusdk/sessionkit/internal/audit"
	"github.com/edusdk/sessionkit/internal/rate"
)

const (
	auditEventSignIn                    = "sign_in"
	auditEventSignOut                   = "sign_out"
	auditEventHydrateRestored           = "hydrate_restored"
	auditEventHydrateFallback           = "hydrate_fallback"
	auditEventLoginSuccess              = "login_success"
	auditEventLoginFailure              = "login_failure"
	auditEventSignupSuccess             = "signup_success"
	auditEventSignupFailure             = "signup_failure"
	auditEventGoogleTokenStale          = "google_token_stale"
	auditEventRefreshSuccess            = "refresh_success"
	auditEventRefreshSwallowed          = "refresh_swallowed"
	auditEventRefreshDiscardedStale     = "refresh_discarded_stale"
	auditEventRefreshCooldown           = "refresh_cooldown"
	auditEventOnboardingContextSaved    = "onboarding_context_saved"
	auditEventOnboardingContextCleared  = "onboarding_context_cleared"
	auditEventOnboardingCompleted       = "onboarding_completed"
	auditEventOnboardingConflictResumed = "onboarding_conflict_continue"
	auditEventOnboardingFailure         = "onboarding_failure"
	auditEventDraftSaved                = "draft_saved"
	auditEventDraftCleared              = "draft_cleared"
	auditEventValidateSuccess           = "validate_success"
	auditEventValidateRejected          = "validate_rejected"
)

// AuditErrorCode defines a public type used by sessionkit APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrNoSession          AuditErrorCode = "no_session"
	auditErrGoogleStale        AuditErrorCode = "google_token_stale"
	auditErrConflict           AuditErrorCode = "conflict"
	auditErrValidation         AuditErrorCode = "validation_rejected"
	auditErrNetwork            AuditErrorCode = "network_unreachable"
	auditErrServer             AuditErrorCode = "server_error"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *internalaudit.Dispatcher {
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}, sink)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	role Role,
	clientSessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:       time.Now().UTC(),
		EventType:       eventType,
		UserID:          userID,
		Role:            string(role),
		DeviceID:        deviceIDFromContext(ctx),
		AppVersion:      appVersionFromContext(ctx),
		ClientSessionID: clientSessionID,
		Success:         success,
		Metadata:        metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrGoogleTokenStale):
		return auditErrGoogleStale
	case errors.Is(err, ErrNoSession):
		return auditErrNoSession
	case errors.Is(err, rate.ErrCoolingDown):
		return auditErrRateLimited
	case IsUnauthorized(err):
		return auditErrUnauthorized
	case IsConflict(err):
		return auditErrConflict
	case IsValidation(err):
		return auditErrValidation
	case IsNetwork(err):
		return auditErrNetwork
	case IsServer(err):
		return auditErrServer
	default:
		return auditErrInternal
	}
}
