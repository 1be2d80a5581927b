package flows

import "context"

// HydrateFailureKind classifies restore failures for root-level mapping.
type HydrateFailureKind int

const (
	HydrateFailureNone HydrateFailureKind = iota
	HydrateFailureStorage
	HydrateFailureRejected
)

// HydrateResult reports what was restored from device storage. An empty
// Access with Failure == HydrateFailureNone means nothing was stored.
type HydrateResult struct {
	Failure   HydrateFailureKind
	Err       error
	Access    string
	Refresh   string
	UserFound bool
	Validated bool
}

// HydrateDeps captures restore flow dependencies.
type HydrateDeps struct {
	LoadPair        func(ctx context.Context) (string, string, error)
	LoadUser        func(ctx context.Context) (bool, error)
	Validate        func(ctx context.Context, accessToken string) error
	ValidateEagerly bool
	IsUnauthorized  func(error) bool
	Warn            func(string, ...any)
}

// RunHydrate restores the persisted token pair and cached profile.
// Storage failures degrade to a signed-out result instead of erroring,
// so a corrupt keychain can never wedge app startup.
func RunHydrate(ctx context.Context, deps HydrateDeps) HydrateResult {
	access, refresh, err := deps.LoadPair(ctx)
	if err != nil {
		return HydrateResult{
			Failure: HydrateFailureStorage,
			Err:     err,
		}
	}
	if access == "" {
		return HydrateResult{Failure: HydrateFailureNone}
	}

	userFound, err := deps.LoadUser(ctx)
	if err != nil {
		// Pair loaded but the profile read failed. Treat the whole
		// restore as untrustworthy rather than resurrect half a session.
		return HydrateResult{
			Failure: HydrateFailureStorage,
			Err:     err,
		}
	}

	result := HydrateResult{
		Failure:   HydrateFailureNone,
		Access:    access,
		Refresh:   refresh,
		UserFound: userFound,
	}

	if !deps.ValidateEagerly || deps.Validate == nil {
		return result
	}

	if err := deps.Validate(ctx, access); err != nil {
		if deps.IsUnauthorized != nil && deps.IsUnauthorized(err) {
			return HydrateResult{
				Failure: HydrateFailureRejected,
				Err:     err,
				Access:  access,
				Refresh: refresh,
			}
		}
		// Network or server trouble. Keep the restored session and let
		// the freshness guard sort it out on the next authed call.
		if deps.Warn != nil {
			deps.Warn("sessionkit: eager validation unreachable, keeping restored session")
		}
		return result
	}

	result.Validated = true
	return result
}
