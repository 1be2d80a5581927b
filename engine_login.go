package sessionkit

import (
	"context"
	"strconv"
)

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if email == "" || password == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"provider":   "password",
				"reason":     "empty_credentials",
			}
		})
		return nil, ErrInvalidCredentials
	}

	resp, err := e.api.Login(ctx, email, password)
	if err != nil {
		if IsUnauthorized(err) {
			err = ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": email,
				"provider":   "password",
			}
		})
		return nil, err
	}

	return e.completeLogin(ctx, "password", email, "", resp, MetricLoginSuccess, auditEventLoginSuccess)
}

// Signup describes the signup operation and its observable behavior.
//
// Signup may return an error when input validation, dependency calls, or security checks fail.
// Signup does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	resp, err := e.api.Signup(ctx, req)
	if err != nil {
		e.metricInc(MetricSignupFailure)
		e.emitAudit(ctx, auditEventSignupFailure, false, "", "", "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Email,
				"provider":   "password",
			}
		})
		return nil, err
	}

	return e.completeLogin(ctx, "password", req.Email, req.FullName, resp, MetricSignupSuccess, auditEventSignupSuccess)
}

// LoginWithGoogle describes the loginwithgoogle operation and its observable behavior.
//
// LoginWithGoogle may return an error when input validation, dependency calls, or security checks fail.
// LoginWithGoogle does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) LoginWithGoogle(ctx context.Context, cred GoogleCredential) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	// A Google ID token is only exchanged while it is demonstrably fresh.
	// Anything older than the reuse window forces the caller back through
	// the native sign-in sheet instead of sending a token the server will
	// reject anyway.
	if age := e.now().Sub(cred.ObtainedAt); age > e.config.Google.ReuseWindow {
		e.metricInc(MetricGoogleTokenStale)
		e.emitAudit(ctx, auditEventGoogleTokenStale, false, "", "", "", ErrGoogleTokenStale, func() map[string]string {
			return map[string]string{
				"provider": "google",
				"age":      age.String(),
			}
		})
		return nil, ErrGoogleTokenStale
	}

	resp, err := e.api.LoginWithGoogle(ctx, cred.IDToken)
	if err != nil {
		if IsUnauthorized(err) {
			err = ErrInvalidCredentials
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", err, func() map[string]string {
			return map[string]string{
				"provider": "google",
			}
		})
		return nil, err
	}

	return e.completeLogin(ctx, "google", "", "", resp, MetricLoginSuccess, auditEventLoginSuccess)
}

// completeLogin lands a successful credential exchange in the state
// machine. A response without a profile establishes the session anyway
// and parks an onboarding context so a relaunch can resume the flow.
func (e *Engine) completeLogin(
	ctx context.Context,
	provider string,
	identifier string,
	fallbackName string,
	resp *LoginResponse,
	successMetric MetricID,
	successEvent string,
) (*LoginResult, error) {
	if resp == nil {
		return nil, NewAPIError(ErrorKindServer, 0, "empty login response", nil)
	}

	pending := resp.OnboardingRequired || resp.User == nil

	var user *User
	if !pending {
		u := *resp.User
		user = &u
	}

	// The onboarding context lands before the session does, so a crash
	// between the two writes still leaves the resume data behind.
	if pending {
		octx := OnboardingContext{
			Email:    resp.Email,
			Provider: provider,
			FullName: resp.FullName,
			Role:     resp.Role,
		}
		if octx.Email == "" {
			octx.Email = identifier
		}
		if octx.FullName == "" {
			octx.FullName = fallbackName
		}
		if err := e.SetOnboardingContext(ctx, octx); err != nil {
			e.warnf("sessionkit: onboarding context persist failed: %v", err)
		}
	}

	e.SignIn(ctx, resp.Pair, user)

	reason := resp.OnboardingReason
	if pending && reason == "" {
		reason = "profile_missing"
	}

	e.mu.Lock()
	csid := e.clientSessionID
	e.mu.Unlock()

	e.metricInc(successMetric)
	e.emitAudit(ctx, successEvent, true, userIDOf(user), roleOf(user), csid, nil, func() map[string]string {
		return map[string]string{
			"identifier":         identifier,
			"provider":           provider,
			"onboarding_pending": strconv.FormatBool(pending),
		}
	})

	result := &LoginResult{
		Pair:               resp.Pair,
		OnboardingRequired: pending,
		OnboardingReason:   reason,
	}
	if user != nil {
		u := *user
		result.User = &u
	}
	return result, nil
}
