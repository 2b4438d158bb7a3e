package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/frahmantamala/admin-access/internal/auth"
	"github.com/frahmantamala/admin-access/pkg/logger"
)

// Authenticate validates the bearer token on every request and stores the
// resulting principal in the request context. Rejection reasons are logged
// with their precise state; the response body stays generic.
func Authenticate(svc auth.ServiceAPI) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := bearerToken(r)
			if bearer == "" {
				http.Error(w, "missing authorization token", http.StatusUnauthorized)
				return
			}

			principal, err := svc.ValidateToken(bearer)
			if err != nil {
				var rejected *auth.TokenRejectedError
				if errors.As(err, &rejected) {
					logger.From(r.Context()).Warn("token rejected", "reason", rejected.Reason)
					appErr := rejected.AppErr()
					http.Error(w, appErr.Message, appErr.StatusCode)
					return
				}
				logger.From(r.Context()).Error("token validation fault", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "userID", principal.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
