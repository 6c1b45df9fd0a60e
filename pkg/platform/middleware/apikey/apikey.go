// Package apikey identifies partners calling the /v1 API.
package apikey

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	request "immersionfacile/pkg/platform/middleware/request"
	"immersionfacile/pkg/requestcontext"
)

// ConsumerValidator resolves an API key to the partner owning it.
type ConsumerValidator interface {
	Authenticate(ctx context.Context, key string) (requestcontext.APIConsumer, error)
}

// Identify puts the API consumer into the request context. Requests without
// a key go through anonymously; an unknown key is rejected with 401.
func Identify(validator ConsumerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := strings.TrimSpace(r.Header.Get("Authorization"))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if validator == nil {
				reject(w)
				return
			}
			consumer, err := validator.Authenticate(ctx, key)
			if err != nil {
				logger.WarnContext(ctx, "api key rejected",
					"request_id", request.GetRequestID(ctx),
					"error", err,
				)
				reject(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithAPIConsumer(ctx, consumer)))
		})
	}
}

func reject(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"unknown api key"}`))
}
