package internaldefs

import (
	sessionkit "github.com/edusdk/sessionkit"
)

// CounterDef defines a public type used by sessionkit APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by sessionkit APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sessionkit.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: sessionkit.MetricSignIn, Name: "sessionkit_sign_in_total", Help: "Sessions installed through SignIn."},
	{ID: sessionkit.MetricSignOut, Name: "sessionkit_sign_out_total", Help: "Explicit sign-out transitions."},
	{ID: sessionkit.MetricHydrateRestored, Name: "sessionkit_hydrate_restored_total", Help: "Hydrations that restored a stored session."},
	{ID: sessionkit.MetricHydrateFallback, Name: "sessionkit_hydrate_fallback_total", Help: "Hydrations that fell back to signed-out."},
	{ID: sessionkit.MetricLoginSuccess, Name: "sessionkit_login_success_total", Help: "Successful password logins."},
	{ID: sessionkit.MetricLoginFailure, Name: "sessionkit_login_failure_total", Help: "Failed password logins."},
	{ID: sessionkit.MetricSignupSuccess, Name: "sessionkit_signup_success_total", Help: "Successful signups."},
	{ID: sessionkit.MetricSignupFailure, Name: "sessionkit_signup_failure_total", Help: "Failed signups."},
	{ID: sessionkit.MetricGoogleTokenStale, Name: "sessionkit_google_token_stale_total", Help: "Google credentials rejected by the reuse window."},
	{ID: sessionkit.MetricRefreshSuccess, Name: "sessionkit_refresh_success_total", Help: "Successful token refreshes."},
	{ID: sessionkit.MetricRefreshSwallowed, Name: "sessionkit_refresh_swallowed_total", Help: "Refresh failures swallowed in favor of the current token."},
	{ID: sessionkit.MetricRefreshDiscardedStale, Name: "sessionkit_refresh_discarded_stale_total", Help: "Refresh results discarded after a concurrent session change."},
	{ID: sessionkit.MetricRefreshSkippedFresh, Name: "sessionkit_refresh_skipped_fresh_total", Help: "Freshness checks that found the token still fresh."},
	{ID: sessionkit.MetricRefreshPassthrough, Name: "sessionkit_refresh_passthrough_total", Help: "Tokens passed through because the expiry claim was unreadable."},
	{ID: sessionkit.MetricRefreshCooldown, Name: "sessionkit_refresh_cooldown_total", Help: "Refresh attempts suppressed by the failure cooldown."},
	{ID: sessionkit.MetricOnboardingCompleted, Name: "sessionkit_onboarding_completed_total", Help: "Completed onboarding flows."},
	{ID: sessionkit.MetricOnboardingConflict, Name: "sessionkit_onboarding_conflict_total", Help: "Onboarding submissions resolved through an existing profile."},
	{ID: sessionkit.MetricOnboardingFailure, Name: "sessionkit_onboarding_failure_total", Help: "Failed onboarding submissions."},
	{ID: sessionkit.MetricDraftSaved, Name: "sessionkit_draft_saved_total", Help: "Onboarding drafts written to scratch storage."},
	{ID: sessionkit.MetricDraftCleared, Name: "sessionkit_draft_cleared_total", Help: "Onboarding drafts cleared from scratch storage."},
	{ID: sessionkit.MetricValidateSuccess, Name: "sessionkit_validate_success_total", Help: "Server-side session validations that succeeded."},
	{ID: sessionkit.MetricValidateRejected, Name: "sessionkit_validate_rejected_total", Help: "Server-side session validations that rejected the token."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: sessionkit.MetricRefreshLatency, Name: "sessionkit_refresh_latency_seconds", Help: "Refresh call latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
