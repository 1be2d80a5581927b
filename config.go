package sessionkit

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by sessionkit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Refresh RefreshConfig
	Google  GoogleConfig
	Hydrate HydrateConfig
	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by sessionkit APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	Threshold        time.Duration
	EnableCooldown   bool
	CooldownDuration time.Duration
	MaxFailures      int
}

/*
====================================
GOOGLE CONFIG
====================================
*/

// GoogleConfig defines a public type used by sessionkit APIs.
//
// GoogleConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GoogleConfig struct {
	ReuseWindow time.Duration
}

/*
====================================
HYDRATE CONFIG
====================================
*/

// HydrateConfig defines a public type used by sessionkit APIs.
//
// HydrateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HydrateConfig struct {
	ValidateEagerly bool
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig defines a public type used by sessionkit APIs.
//
// StorageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StorageConfig struct {
	OnboardingContextKey string
	DraftDataKey         string
}

// AuditConfig defines a public type used by sessionkit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by sessionkit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Refresh: RefreshConfig{
			Threshold:        60 * time.Second,
			EnableCooldown:   false,
			CooldownDuration: 30 * time.Second,
			MaxFailures:      3,
		},
		Google: GoogleConfig{
			ReuseWindow: 120 * time.Second,
		},
		Hydrate: HydrateConfig{
			ValidateEagerly: false,
		},
		Storage: StorageConfig{
			OnboardingContextKey: "onboarding_context",
			DraftDataKey:         "onboarding_draft",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Refresh
	if c.Refresh.Threshold <= 0 {
		return errors.New("Refresh Threshold must be > 0")
	}
	if c.Refresh.Threshold > time.Hour {
		return errors.New("Refresh Threshold must be <= 1h")
	}
	if c.Refresh.EnableCooldown {
		if c.Refresh.CooldownDuration <= 0 {
			return errors.New("Refresh CooldownDuration must be > 0 when cooldown is enabled")
		}
		if c.Refresh.MaxFailures <= 0 {
			return errors.New("Refresh MaxFailures must be > 0 when cooldown is enabled")
		}
	}

	// Google
	if c.Google.ReuseWindow <= 0 {
		return errors.New("Google ReuseWindow must be > 0")
	}
	if c.Google.ReuseWindow > time.Hour {
		return errors.New("Google ReuseWindow must be <= 1h")
	}

	// Storage
	if strings.TrimSpace(c.Storage.OnboardingContextKey) == "" {
		return errors.New("Storage OnboardingContextKey must not be empty")
	}
	if strings.TrimSpace(c.Storage.DraftDataKey) == "" {
		return errors.New("Storage DraftDataKey must not be empty")
	}
	if c.Storage.OnboardingContextKey == c.Storage.DraftDataKey {
		return errors.New("Storage OnboardingContextKey and DraftDataKey must differ")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
