package middleware

import (
	"net/http"

	"github.com/edusdk/sessionkit"
)

// RequireTeacher returns middleware that guards the wrapped handler for
// the teacher shell using the default routes.
//
//	Docs: docs/middleware.md
func RequireTeacher(engine *sessionkit.Engine) func(http.Handler) http.Handler {
	return Guard(engine, sessionkit.RoleTeacher, Routes{})
}

func RequireParent(engine *sessionkit.Engine) func(http.Handler) http.Handler {
	return Guard(engine, sessionkit.RoleParent, Routes{})
}

func RequireStudent(engine *sessionkit.Engine) func(http.Handler) http.Handler {
	return Guard(engine, sessionkit.RoleStudent, Routes{})
}
