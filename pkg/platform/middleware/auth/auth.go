// Package auth guards convention routes with magic link tokens.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	request "immersionfacile/pkg/platform/middleware/request"
	"immersionfacile/pkg/requestcontext"
)

// MagicLinkValidator verifies a magic link token.
type MagicLinkValidator interface {
	Authenticate(ctx context.Context, token string) (requestcontext.Actor, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// TokenFromRequest reads the token from the jwt query parameter or the
// Authorization header, with or without a Bearer prefix.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("jwt"); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return header
}

// RequireMagicLink puts the verified actor into the request context.
func RequireMagicLink(validator MagicLinkValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := TokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing magic link",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing magic link token")
				return
			}

			actor, err := validator.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid magic link",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired magic link")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithConventionActor(ctx, actor)))
		})
	}
}
