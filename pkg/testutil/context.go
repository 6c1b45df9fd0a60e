package testutil

import (
	"net/http"

	"immersionfacile/pkg/requestcontext"
)

// WithConventionActor simulates a request carrying a verified magic link.
func WithConventionActor(req *http.Request, conventionID, role string) *http.Request {
	ctx := requestcontext.WithConventionActor(req.Context(), requestcontext.Actor{
		ConventionID: conventionID,
		Role:         role,
	})
	return req.WithContext(ctx)
}
