package sessionkit

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/edusdk/sessionkit/internal/audit"
	internalmetrics "github.com/edusdk/sessionkit/internal/metrics"
)

// Status represents the lifecycle state of the device session.
//
//	Docs: docs/lifecycle.md
type Status uint8

const (
	// StatusUninitialized is an exported constant or variable used by the session engine.
	StatusUninitialized Status = iota
	// StatusUnauthenticated is an exported constant or variable used by the session engine.
	StatusUnauthenticated
	// StatusAuthenticated is an exported constant or variable used by the session engine.
	StatusAuthenticated
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Role identifies which of the platform's audiences the signed-in
// user belongs to. The set is closed: every profile the backend
// creates carries exactly one of these values.
type Role string

const (
	// RoleTeacher is an exported constant or variable used by the session engine.
	RoleTeacher Role = "teacher"
	// RoleParent is an exported constant or variable used by the session engine.
	RoleParent Role = "parent"
	// RoleStudent is an exported constant or variable used by the session engine.
	RoleStudent Role = "student"
)

// Valid describes the valid operation and its observable behavior.
//
// Valid may return an error when input validation, dependency calls, or security checks fail.
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// User is the cached profile for the signed-in account. A nil User on
// an authenticated session means the account exists but onboarding has
// not produced a profile yet.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role"`
	SchoolID string `json:"schoolId,omitempty"`
}

// TokenPair carries the bearer access token and the rotation refresh
// token issued together by the backend.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// OnboardingContext preserves the identity handoff between a login
// that found no profile and the profile-creation flow, so the
// onboarding screen can prefill without re-prompting credentials.
type OnboardingContext struct {
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// State is the engine's observable session snapshot. Pointer fields
// are deep copies; mutating them never touches engine state.
//
//	Docs: docs/lifecycle.md
type State struct {
	Status            Status
	Token             *TokenPair
	User              *User
	OnboardingContext *OnboardingContext
	Generation        uint64
}

// LoginResult is returned by [Engine.Login], [Engine.Signup], and
// [Engine.LoginWithGoogle]. When OnboardingRequired is set the session
// is authenticated but User is nil until profile creation completes.
type LoginResult struct {
	Pair               TokenPair
	User               *User
	OnboardingRequired bool
	OnboardingReason   string
}

// GoogleCredential carries a Google ID token together with the moment
// the client obtained it, so the engine can refuse tokens that sat
// around past the reuse window.
type GoogleCredential struct {
	IDToken    string
	ObtainedAt time.Time
}

// SignupRequest is the input for [Engine.Signup].
type SignupRequest struct {
	Email    string
	Password string
	FullName string
}

// ProfileRequest is the input for [Engine.CompleteOnboarding]. Role is
// required; the remaining fields describe the profile being created.
type ProfileRequest struct {
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
	SchoolID string `json:"schoolId,omitempty"`
	Grade    string `json:"grade,omitempty"`
}

// LoginResponse is what an [AuthAPI] implementation returns from the
// credential exchanges. OnboardingRequired signals that the account
// authenticated but has no profile; Email, FullName, and Role carry
// whatever identity hints the backend included for prefill.
type LoginResponse struct {
	Pair               TokenPair
	User               *User
	OnboardingRequired bool
	OnboardingReason   string
	Email              string
	FullName           string
	Role               Role
}

// TokenStore is the device's secure credential storage (keychain,
// keystore, or an equivalent). Implementations must return (nil, nil)
// for absent values; errors are reserved for storage faults.
//
//	Docs: docs/store.md
type TokenStore interface {
	Pair(ctx context.Context) (*TokenPair, error)
	SetPair(ctx context.Context, pair TokenPair) error
	RemovePair(ctx context.Context) error
	User(ctx context.Context) (*User, error)
	SetUser(ctx context.Context, user User) error
	RemoveUser(ctx context.Context) error
}

// ScratchStore is the device's plain key-value storage for
// non-credential state such as the onboarding context and form drafts.
// Absent keys return (nil, nil).
//
//	Docs: docs/store.md
type ScratchStore interface {
	Item(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// AuthAPI is the backend boundary that callers must implement to
// integrate sessionkit with their transport. Failures should be
// reported as [*APIError] values so the engine can distinguish
// network trouble from rejections.
//
//	Docs: docs/engine.md
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*LoginResponse, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateToken(ctx context.Context, accessToken string) (*User, error)
	CreateProfile(ctx context.Context, accessToken string, req ProfileRequest) (*User, error)
}

// AuditEvent is a structured audit record emitted by the engine.
//
//	Docs: docs/audit.md
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
//
//	Docs: docs/audit.md
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
//
//	Docs: docs/audit.md
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
//
//	Docs: docs/audit.md
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
//
//	Docs: docs/audit.md
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
//
//	Docs: docs/audit.md
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
//
//	Docs: docs/metrics.md
type MetricID = internalmetrics.MetricID

const (
	// MetricSignIn is an exported constant or variable used by the session engine.
	MetricSignIn = MetricID(internalmetrics.MetricSignIn)
	// MetricSignOut is an exported constant or variable used by the session engine.
	MetricSignOut = MetricID(internalmetrics.MetricSignOut)
	// MetricHydrateRestored is an exported constant or variable used by the session engine.
	MetricHydrateRestored = MetricID(internalmetrics.MetricHydrateRestored)
	// MetricHydrateFallback is an exported constant or variable used by the session engine.
	MetricHydrateFallback = MetricID(internalmetrics.MetricHydrateFallback)
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricSignupSuccess is an exported constant or variable used by the session engine.
	MetricSignupSuccess = MetricID(internalmetrics.MetricSignupSuccess)
	// MetricSignupFailure is an exported constant or variable used by the session engine.
	MetricSignupFailure = MetricID(internalmetrics.MetricSignupFailure)
	// MetricGoogleTokenStale is an exported constant or variable used by the session engine.
	MetricGoogleTokenStale = MetricID(internalmetrics.MetricGoogleTokenStale)
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess = MetricID(internalmetrics.MetricRefreshSuccess)
	// MetricRefreshSwallowed is an exported constant or variable used by the session engine.
	MetricRefreshSwallowed = MetricID(internalmetrics.MetricRefreshSwallowed)
	// MetricRefreshDiscardedStale is an exported constant or variable used by the session engine.
	MetricRefreshDiscardedStale = MetricID(internalmetrics.MetricRefreshDiscardedStale)
	// MetricRefreshSkippedFresh is an exported constant or variable used by the session engine.
	MetricRefreshSkippedFresh = MetricID(internalmetrics.MetricRefreshSkippedFresh)
	// MetricRefreshPassthrough is an exported constant or variable used by the session engine.
	MetricRefreshPassthrough = MetricID(internalmetrics.MetricRefreshPassthrough)
	// MetricRefreshCooldown is an exported constant or variable used by the session engine.
	MetricRefreshCooldown = MetricID(internalmetrics.MetricRefreshCooldown)
	// MetricOnboardingCompleted is an exported constant or variable used by the session engine.
	MetricOnboardingCompleted = MetricID(internalmetrics.MetricOnboardingCompleted)
	// MetricOnboardingConflict is an exported constant or variable used by the session engine.
	MetricOnboardingConflict = MetricID(internalmetrics.MetricOnboardingConflict)
	// MetricOnboardingFailure is an exported constant or variable used by the session engine.
	MetricOnboardingFailure = MetricID(internalmetrics.MetricOnboardingFailure)
	// MetricDraftSaved is an exported constant or variable used by the session engine.
	MetricDraftSaved = MetricID(internalmetrics.MetricDraftSaved)
	// MetricDraftCleared is an exported constant or variable used by the session engine.
	MetricDraftCleared = MetricID(internalmetrics.MetricDraftCleared)
	// MetricValidateSuccess is an exported constant or variable used by the session engine.
	MetricValidateSuccess = MetricID(internalmetrics.MetricValidateSuccess)
	// MetricValidateRejected is an exported constant or variable used by the session engine.
	MetricValidateRejected = MetricID(internalmetrics.MetricValidateRejected)
	// MetricRefreshLatency is an exported constant or variable used by the session engine.
	MetricRefreshLatency = MetricID(internalmetrics.MetricRefreshLatency)

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and optional latency histograms.
//
//	Docs: docs/metrics.md
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
//
//	Docs: docs/metrics.md
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
//
//	Docs: docs/metrics.md
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
