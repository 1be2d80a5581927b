package sessionkit

import "context"

type deviceIDContextKey struct{}
type appVersionContextKey struct{}

// WithDeviceID attaches the device installation identifier to ctx. The
// Engine stamps it onto audit events so device-farm runs and support
// tickets can be correlated.
//
//	Docs: docs/audit.md
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithAppVersion attaches the client application version to ctx for
// audit correlation across staged rollouts.
//
//	Docs: docs/audit.md
func WithAppVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, appVersionContextKey{}, version)
}

func deviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

func appVersionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	version, _ := ctx.Value(appVersionContextKey{}).(string)
	return version
}
