package store

import "errors"

var (
	// ErrUnavailable is an exported constant or variable used by the session engine.
	ErrUnavailable = errors.New("store backend unavailable")
	// ErrCorrupt is an exported constant or variable used by the session engine.
	ErrCorrupt = errors.New("store record corrupt")
)
