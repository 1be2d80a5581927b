package guard

import (
	"github.com/edusdk/sessionkit"
)

// Kind defines a public type used by sessionkit APIs.
//
// Kind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Kind uint8

const (
	// KindNoRender is an exported constant or variable used by the session engine.
	KindNoRender Kind = iota
	// KindRedirectToLogin is an exported constant or variable used by the session engine.
	KindRedirectToLogin
	// KindRedirectToOnboarding is an exported constant or variable used by the session engine.
	KindRedirectToOnboarding
	// KindRedirectToRoleHome is an exported constant or variable used by the session engine.
	KindRedirectToRoleHome
	// KindRender is an exported constant or variable used by the session engine.
	KindRender
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k Kind) String() string {
	switch k {
	case KindNoRender:
		return "no_render"
	case KindRedirectToLogin:
		return "redirect_to_login"
	case KindRedirectToOnboarding:
		return "redirect_to_onboarding"
	case KindRedirectToRoleHome:
		return "redirect_to_role_home"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

// Route defines a public type used by sessionkit APIs.
//
// Route instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Route string

const (
	// RouteLogin is an exported constant or variable used by the session engine.
	RouteLogin Route = "/login"
	// RouteOnboarding is an exported constant or variable used by the session engine.
	RouteOnboarding Route = "/onboarding"
	// RouteTeacherHome is an exported constant or variable used by the session engine.
	RouteTeacherHome Route = "/teacher"
	// RouteParentHome is an exported constant or variable used by the session engine.
	RouteParentHome Route = "/parent"
	// RouteStudentHome is an exported constant or variable used by the session engine.
	RouteStudentHome Route = "/student"
)

// Outcome defines a public type used by sessionkit APIs.
//
// Outcome instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Outcome struct {
	Kind Kind

	// Role is the signed-in user's role. It is populated for
	// KindRedirectToRoleHome and KindRender and empty otherwise.
	Role sessionkit.Role
}

// Evaluate describes the evaluate operation and its observable behavior.
//
// Evaluate may return an error when input validation, dependency calls, or security checks fail.
// Evaluate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Evaluate(status sessionkit.Status, user *sessionkit.User, requiredRole sessionkit.Role) Outcome {
	switch status {
	case sessionkit.StatusUninitialized:
		return Outcome{Kind: KindNoRender}
	case sessionkit.StatusUnauthenticated:
		return Outcome{Kind: KindRedirectToLogin}
	case sessionkit.StatusAuthenticated:
		if user == nil {
			return Outcome{Kind: KindRedirectToOnboarding}
		}
		if requiredRole != "" && user.Role != requiredRole {
			return Outcome{Kind: KindRedirectToRoleHome, Role: user.Role}
		}
		return Outcome{Kind: KindRender, Role: user.Role}
	}
	// An unrecognized status renders nothing rather than guessing.
	return Outcome{Kind: KindNoRender}
}

// EvaluateState describes the evaluatestate operation and its observable behavior.
//
// EvaluateState may return an error when input validation, dependency calls, or security checks fail.
// EvaluateState does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func EvaluateState(st sessionkit.State, requiredRole sessionkit.Role) Outcome {
	return Evaluate(st.Status, st.User, requiredRole)
}

/*
====================================
ROLE HOMES
====================================
*/

// RoleHome describes the rolehome operation and its observable behavior.
//
// RoleHome may return an error when input validation, dependency calls, or security checks fail.
// RoleHome does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func RoleHome(role sessionkit.Role) Route {
	switch role {
	case sessionkit.RoleTeacher:
		return RouteTeacherHome
	case sessionkit.RoleParent:
		return RouteParentHome
	case sessionkit.RoleStudent:
		return RouteStudentHome
	}
	// An unrecognized role lands on login rather than a shell it may not own.
	return RouteLogin
}

// Roles describes the roles operation and its observable behavior.
//
// Roles may return an error when input validation, dependency calls, or security checks fail.
// Roles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Roles() []sessionkit.Role {
	return []sessionkit.Role{
		sessionkit.RoleTeacher,
		sessionkit.RoleParent,
		sessionkit.RoleStudent,
	}
}
