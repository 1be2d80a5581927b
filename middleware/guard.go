package middleware

import (
	"context"
	"net/http"

	"github.com/edusdk/sessionkit"
	"github.com/edusdk/sessionkit/guard"
)

type stateContextKey struct{}

// StateFromContext describes the statefromcontext operation and its observable behavior.
//
// StateFromContext may return an error when input validation, dependency calls, or security checks fail.
// StateFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func StateFromContext(ctx context.Context) (sessionkit.State, bool) {
	st, ok := ctx.Value(stateContextKey{}).(sessionkit.State)
	return st, ok
}

// Routes defines a public type used by sessionkit APIs.
//
// Routes instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Routes struct {
	Login      guard.Route
	Onboarding guard.Route
}

func (r Routes) login() guard.Route {
	if r.Login == "" {
		return guard.RouteLogin
	}
	return r.Login
}

func (r Routes) onboarding() guard.Route {
	if r.Onboarding == "" {
		return guard.RouteOnboarding
	}
	return r.Onboarding
}

// Guard describes the guard operation and its observable behavior.
//
// Guard may return an error when input validation, dependency calls, or security checks fail.
// Guard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Guard(engine *sessionkit.Engine, requiredRole sessionkit.Role, routes Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "session engine unavailable", http.StatusServiceUnavailable)
				return
			}

			st := engine.State()
			outcome := guard.EvaluateState(st, requiredRole)

			switch outcome.Kind {
			case guard.KindRender:
				ctx := context.WithValue(r.Context(), stateContextKey{}, st)
				next.ServeHTTP(w, r.WithContext(ctx))
			case guard.KindRedirectToLogin:
				http.Redirect(w, r, string(routes.login()), http.StatusFound)
			case guard.KindRedirectToOnboarding:
				http.Redirect(w, r, string(routes.onboarding()), http.StatusFound)
			case guard.KindRedirectToRoleHome:
				http.Redirect(w, r, string(guard.RoleHome(outcome.Role)), http.StatusFound)
			default:
				// KindNoRender: the engine has not hydrated yet.
				http.Error(w, "session not ready", http.StatusServiceUnavailable)
			}
		})
	}
}
