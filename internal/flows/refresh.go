package flows

import (
	"context"
	"time"
)

// RefreshFailureKind classifies freshness-check failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureDecode
	RefreshFailureCooldown
	RefreshFailureCall
)

// RefreshResult carries the surviving token pair plus failure metadata.
// Access and Refresh are always populated: the renewed pair on success,
// otherwise the pair that was passed in.
type RefreshResult struct {
	Failure   RefreshFailureKind
	Err       error
	Access    string
	Refresh   string
	Refreshed bool
	ExpiresAt time.Time
	Latency   time.Duration
}

// RefreshGate throttles renewal attempts after repeated failures.
type RefreshGate interface {
	Allow() error
	RecordFailure()
	RecordSuccess()
}

// RefreshDeps captures freshness flow dependencies.
type RefreshDeps struct {
	ExpiresAt func(string) (time.Time, error)
	Now       func() time.Time
	Threshold time.Duration
	Call      func(ctx context.Context, refreshToken string) (string, string, error)
	Gate      RefreshGate
	Warn      func(string, ...any)
}

// RunRefresh checks access token freshness and renews the pair when it
// is inside the expiry threshold. Every failure path hands back the
// input pair untouched so callers can keep operating on the old token.
func RunRefresh(ctx context.Context, access, refresh string, deps RefreshDeps) RefreshResult {
	exp, err := deps.ExpiresAt(access)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureDecode,
			Err:     err,
			Access:  access,
			Refresh: refresh,
		}
	}

	if exp.Sub(deps.Now()) >= deps.Threshold {
		return RefreshResult{
			Failure:   RefreshFailureNone,
			Access:    access,
			Refresh:   refresh,
			ExpiresAt: exp,
		}
	}

	if deps.Gate != nil {
		if err := deps.Gate.Allow(); err != nil {
			return RefreshResult{
				Failure:   RefreshFailureCooldown,
				Err:       err,
				Access:    access,
				Refresh:   refresh,
				ExpiresAt: exp,
			}
		}
	}

	started := deps.Now()
	newAccess, newRefresh, err := deps.Call(ctx, refresh)
	latency := deps.Now().Sub(started)
	if err != nil {
		if deps.Gate != nil {
			deps.Gate.RecordFailure()
		}
		return RefreshResult{
			Failure:   RefreshFailureCall,
			Err:       err,
			Access:    access,
			Refresh:   refresh,
			ExpiresAt: exp,
			Latency:   latency,
		}
	}
	if deps.Gate != nil {
		deps.Gate.RecordSuccess()
	}

	newExp, decodeErr := deps.ExpiresAt(newAccess)
	if decodeErr != nil && deps.Warn != nil {
		deps.Warn("sessionkit: renewed access token has no readable expiry")
	}

	return RefreshResult{
		Failure:   RefreshFailureNone,
		Access:    newAccess,
		Refresh:   newRefresh,
		Refreshed: true,
		ExpiresAt: newExp,
		Latency:   latency,
	}
}
