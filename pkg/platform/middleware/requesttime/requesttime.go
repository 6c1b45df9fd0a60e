// Package requesttime pins one "now" per request. Every timestamp written
// while serving the request (signatures, validation dates, event
// occurrences) reads it through requestcontext.Now.
package requesttime

import (
	"net/http"
	"time"

	"immersionfacile/pkg/requestcontext"
)

// Middleware pins the wall clock in UTC.
func Middleware(next http.Handler) http.Handler {
	return Clock(time.Now)(next)
}

// Clock pins now() in UTC. Tests pass a fixed clock.
func Clock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
