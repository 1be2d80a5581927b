package sessionkit

import (
	"errors"
	"time"

	"github.com/edusdk/sessionkit/internal/rate"
)

// Builder defines a public type used by sessionkit APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config       Config
	tokenStore   TokenStore
	scratchStore ScratchStore
	api          AuthAPI
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTokenStore describes the withtokenstore operation and its observable behavior.
//
// WithTokenStore may return an error when input validation, dependency calls, or security checks fail.
// WithTokenStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTokenStore(ts TokenStore) *Builder {
	b.tokenStore = ts
	return b
}

// WithScratchStore describes the withscratchstore operation and its observable behavior.
//
// WithScratchStore may return an error when input validation, dependency calls, or security checks fail.
// WithScratchStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithScratchStore(ss ScratchStore) *Builder {
	b.scratchStore = ss
	return b
}

// WithAuthAPI describes the withauthapi operation and its observable behavior.
//
// WithAuthAPI may return an error when input validation, dependency calls, or security checks fail.
// WithAuthAPI does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuthAPI(api AuthAPI) *Builder {
	b.api = api
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config

	if b.tokenStore == nil {
		return nil, errors.New("token store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.scratchStore == nil {
		return nil, errors.New("scratch store required")
	}

	if b.api == nil {
		return nil, errors.New("auth api required")
	}

	engine := &Engine{
		config:       cfg,
		tokenStore:   b.tokenStore,
		scratchStore: b.scratchStore,
		api:          b.api,
		now:          time.Now,
		status:       StatusUninitialized,
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.cooldown = rate.New(rate.Config{
		Enabled:     cfg.Refresh.EnableCooldown,
		MaxFailures: cfg.Refresh.MaxFailures,
		Cooldown:    cfg.Refresh.CooldownDuration,
	}, engine.now)

	b.built = true

	return engine, nil
}
