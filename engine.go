package sessionkit

import (
	"log"
	"sync"
	"time"

	internalaudit "github.com/edusdk/sessionkit/internal/audit"
	"github.com/edusdk/sessionkit/internal/rate"
)

// Engine defines a public type used by sessionkit APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	tokenStore   TokenStore
	scratchStore ScratchStore
	api          AuthAPI
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	cooldown     *rate.Limiter
	now          func() time.Time

	mu                sync.Mutex
	status            Status
	token             *TokenPair
	user              *User
	onboardingContext *OnboardingContext
	clientSessionID   string
	generation        uint64

	subsMu  sync.Mutex
	subs    map[uint64]func(State)
	nextSub uint64
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) warnf(format string, args ...any) {
	log.Printf(format, args...)
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) State() State {
	if e == nil {
		return State{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe describes the subscribe operation and its observable behavior.
//
// Subscribe may return an error when input validation, dependency calls, or security checks fail.
// Subscribe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Subscribe(fn func(State)) func() {
	if e == nil || fn == nil {
		return func() {}
	}

	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	if e.subs == nil {
		e.subs = make(map[uint64]func(State))
	}
	e.subs[id] = fn
	e.subsMu.Unlock()

	return func() {
		e.subsMu.Lock()
		delete(e.subs, id)
		e.subsMu.Unlock()
	}
}

// snapshotLocked deep-copies the session state. Caller must hold e.mu.
func (e *Engine) snapshotLocked() State {
	s := State{
		Status:     e.status,
		Generation: e.generation,
	}
	if e.token != nil {
		token := *e.token
		s.Token = &token
	}
	if e.user != nil {
		user := *e.user
		s.User = &user
	}
	if e.onboardingContext != nil {
		oc := *e.onboardingContext
		s.OnboardingContext = &oc
	}
	return s
}

// notify fans a committed snapshot out to subscribers. Callbacks run on
// the mutating goroutine after the state lock is released; they may
// call State or Subscribe but must not block.
func (e *Engine) notify(snapshot State) {
	e.subsMu.Lock()
	fns := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subsMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
