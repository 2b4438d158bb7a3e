package middleware

import (
	"net/http"

	"github.com/frahmantamala/admin-access/internal/auth"
	"github.com/frahmantamala/admin-access/pkg/logger"
)

// RequireFunction gates a route behind the permission verifier for the given
// function id. Grants are read live per request; a function with no
// permission link passes every authenticated principal.
func RequireFunction(svc auth.ServiceAPI, functionID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			allowed, err := svc.VerifyPermission(functionID, principal)
			if err != nil {
				logger.From(r.Context()).Error("permission check fault",
					"error", err, "function_id", functionID, "user_id", principal.ID)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				logger.From(r.Context()).Warn("access denied",
					"function_id", functionID, "user_id", principal.ID)
				http.Error(w, "permission denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
