package sessionkit

import "time"

type PolicyReport struct {
	RefreshThreshold     time.Duration
	CooldownEnabled      bool
	CooldownDuration     time.Duration
	CooldownMaxFailures  int
	GoogleReuseWindow    time.Duration
	EagerValidation      bool
	AuditEnabled         bool
	AuditBufferSize      int
	MetricsEnabled       bool
	LatencyHistograms    bool
	OnboardingContextKey string
	DraftDataKey         string
}

func (e *Engine) PolicyReport() PolicyReport {
	if e == nil {
		return PolicyReport{}
	}

	return PolicyReport{
		RefreshThreshold:     e.config.Refresh.Threshold,
		CooldownEnabled:      e.config.Refresh.EnableCooldown,
		CooldownDuration:     e.config.Refresh.CooldownDuration,
		CooldownMaxFailures:  e.config.Refresh.MaxFailures,
		GoogleReuseWindow:    e.config.Google.ReuseWindow,
		EagerValidation:      e.config.Hydrate.ValidateEagerly,
		AuditEnabled:         e.config.Audit.Enabled,
		AuditBufferSize:      e.config.Audit.BufferSize,
		MetricsEnabled:       e.config.Metrics.Enabled,
		LatencyHistograms:    e.config.Metrics.EnableLatencyHistograms,
		OnboardingContextKey: e.config.Storage.OnboardingContextKey,
		DraftDataKey:         e.config.Storage.DraftDataKey,
	}
}
