package rate

import (
	"sync"
	"time"
)

// Config holds refresh cooldown tuning parameters.
type Config struct {
	Enabled     bool
	MaxFailures int
	Cooldown    time.Duration
}

// Limiter suppresses token refresh attempts after repeated consecutive
// failures. Once MaxFailures is reached, Allow rejects attempts until
// the cooldown window expires.
type Limiter struct {
	config Config
	now    func() time.Time

	mu       sync.Mutex
	failures int
	until    time.Time
}

// New creates a cooldown [Limiter]. A nil now function defaults to
// time.Now. When cfg.Enabled is false, New returns nil and every
// method on the nil limiter is a no-op.
func New(cfg Config, now func() time.Time) *Limiter {
	if !cfg.Enabled {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}

	return &Limiter{
		config: cfg,
		now:    now,
	}
}

// Allow reports whether a refresh attempt may proceed. Returns
// ErrCoolingDown while the cooldown window is active.
func (l *Limiter) Allow() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.until.IsZero() {
		return nil
	}
	if l.now().Before(l.until) {
		return ErrCoolingDown
	}

	// Window expired: reopen and grant a fresh failure budget.
	l.until = time.Time{}
	l.failures = 0
	return nil
}

// RecordFailure counts a failed refresh attempt. Reaching MaxFailures
// consecutive failures starts the cooldown window.
func (l *Limiter) RecordFailure() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures++
	if l.failures >= l.config.MaxFailures {
		l.until = l.now().Add(l.config.Cooldown)
	}
}

// RecordSuccess resets the failure counter and clears any active
// cooldown window.
func (l *Limiter) RecordSuccess() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures = 0
	l.until = time.Time{}
}

// Failures returns the current consecutive-failure count.
func (l *Limiter) Failures() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

// Remaining returns the time left in the active cooldown window, or
// zero when no window is active.
func (l *Limiter) Remaining() time.Duration {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.until.IsZero() {
		return 0
	}
	d := l.until.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}
