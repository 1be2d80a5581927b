package sessionkit

import "errors"

var (
	// ErrUnauthorized is an exported constant or variable used by the session engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSession is an exported constant or variable used by the session engine.
	ErrNoSession = errors.New("no active session")
	// ErrGoogleTokenStale is an exported constant or variable used by the session engine.
	ErrGoogleTokenStale = errors.New("google token outside reuse window")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// ErrorKind classifies an [APIError] by how the backend call failed.
type ErrorKind uint8

const (
	// ErrorKindNetwork is an exported constant or variable used by the session engine.
	ErrorKindNetwork ErrorKind = iota
	// ErrorKindValidation is an exported constant or variable used by the session engine.
	ErrorKindValidation
	// ErrorKindConflict is an exported constant or variable used by the session engine.
	ErrorKindConflict
	// ErrorKindUnauthorized is an exported constant or variable used by the session engine.
	ErrorKindUnauthorized
	// ErrorKindServer is an exported constant or variable used by the session engine.
	ErrorKindServer
)

// String returns the lowercase name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNetwork:
		return "network"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindConflict:
		return "conflict"
	case ErrorKindUnauthorized:
		return "unauthorized"
	case ErrorKindServer:
		return "server"
	default:
		return "unknown"
	}
}

// APIError is the tagged failure an [AuthAPI] implementation returns so
// the engine can tell a dead connection apart from a rejection. Status
// carries the HTTP status when one was received; Err carries the
// underlying transport error when there is one.
type APIError struct {
	Kind   ErrorKind
	Status int
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := "api " + e.Kind.String()
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error { return e.Err }

// NewAPIError builds an [APIError] with the given classification.
func NewAPIError(kind ErrorKind, status int, detail string, err error) *APIError {
	return &APIError{Kind: kind, Status: status, Detail: detail, Err: err}
}

func hasKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// IsNetwork reports whether err is an [APIError] caused by transport
// failure rather than a backend decision.
func IsNetwork(err error) bool { return hasKind(err, ErrorKindNetwork) }

// IsValidation reports whether err is an [APIError] rejecting the
// request payload.
func IsValidation(err error) bool { return hasKind(err, ErrorKindValidation) }

// IsConflict reports whether err is an [APIError] signaling the
// resource already exists.
func IsConflict(err error) bool { return hasKind(err, ErrorKindConflict) }

// IsUnauthorized reports whether err is [ErrUnauthorized] or an
// [APIError] with unauthorized kind.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return hasKind(err, ErrorKindUnauthorized)
}

// IsServer reports whether err is an [APIError] for a backend-side
// fault.
func IsServer(err error) bool { return hasKind(err, ErrorKindServer) }
