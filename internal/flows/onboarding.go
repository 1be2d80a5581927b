package flows

import "context"

// OnboardingFailureKind classifies profile-creation failures for
// root-level mapping.
type OnboardingFailureKind int

const (
	OnboardingFailureNone OnboardingFailureKind = iota
	OnboardingFailureConflictFetch
	OnboardingFailureNetwork
	OnboardingFailureAPI
)

// OnboardingResult reports how profile creation resolved. Conflict is
// set when the server already had the profile and the canonical copy
// was adopted instead.
type OnboardingResult struct {
	Failure    OnboardingFailureKind
	Err        error
	Conflict   bool
	DraftSaved bool
}

// OnboardingDeps captures profile-creation flow dependencies.
type OnboardingDeps struct {
	CreateProfile func(ctx context.Context) error
	FetchProfile  func(ctx context.Context) error
	PersistDraft  func(ctx context.Context) error
	IsConflict    func(error) bool
	IsNetwork     func(error) bool
	Warn          func(string, ...any)
}

// RunOnboarding submits the profile and resolves the duplicate and
// offline cases. A conflict means another device or an earlier retry
// already created the profile, so the flow fetches the canonical copy
// and reports success. A network failure persists the draft first so
// the form input survives the dead connection, then surfaces the error.
func RunOnboarding(ctx context.Context, deps OnboardingDeps) OnboardingResult {
	err := deps.CreateProfile(ctx)
	if err == nil {
		return OnboardingResult{Failure: OnboardingFailureNone}
	}

	if deps.IsConflict != nil && deps.IsConflict(err) {
		if deps.FetchProfile != nil {
			if fetchErr := deps.FetchProfile(ctx); fetchErr != nil {
				return OnboardingResult{
					Failure:  OnboardingFailureConflictFetch,
					Err:      fetchErr,
					Conflict: true,
				}
			}
		}
		return OnboardingResult{
			Failure:  OnboardingFailureNone,
			Conflict: true,
		}
	}

	if deps.IsNetwork != nil && deps.IsNetwork(err) {
		result := OnboardingResult{
			Failure: OnboardingFailureNetwork,
			Err:     err,
		}
		if deps.PersistDraft != nil {
			if saveErr := deps.PersistDraft(ctx); saveErr != nil {
				if deps.Warn != nil {
					deps.Warn("sessionkit: draft persist failed after network error")
				}
			} else {
				result.DraftSaved = true
			}
		}
		return result
	}

	return OnboardingResult{
		Failure: OnboardingFailureAPI,
		Err:     err,
	}
}
