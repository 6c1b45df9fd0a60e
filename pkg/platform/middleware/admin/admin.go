// Package admin guards back-office routes.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	request "immersionfacile/pkg/platform/middleware/request"
	"immersionfacile/pkg/requestcontext"
)

// TokenValidator verifies an admin token and returns the user name.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

// RequireAdmin accepts "Authorization: Bearer <token>" or a bare token.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			var (
				user string
				err  error
			)
			if token != "" {
				user, err = validator.ValidateToken(ctx, token)
			}
			if token == "" || err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdminUser(ctx, user)))
		})
	}
}
