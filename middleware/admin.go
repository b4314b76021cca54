package middleware

import (
	"net/http"

	"github.com/dixis/dixis/handlers"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
)

// RequireAdmin runs after AuthMiddleware.Require and answers 403 for
// non-admin users.
//
//	authMw.Require(middleware.RequireAdmin(http.HandlerFunc(h.List)))
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
			return
		}

		if !user.IsAdmin() {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
