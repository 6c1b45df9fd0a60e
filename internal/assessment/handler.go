package assessment

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

type Creator interface {
	CreateAssessment(ctx context.Context, a *Assessment) error
}

type Handler struct {
	assessments Creator
	logger      *slog.Logger
}

func NewHandler(assessments Creator, logger *slog.Logger) *Handler {
	return &Handler{assessments: assessments, logger: logger}
}

// RegisterMagicLink mounts the assessment form endpoint. Callers guard r
// with the magic link middleware.
func (h *Handler) RegisterMagicLink(r chi.Router) {
	r.Post("/auth/immersion-assessment", h.handleCreate)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[Assessment](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.assessments.CreateAssessment(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "failed to create assessment",
			"request_id", requestID,
			"convention_id", req.ConventionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"conventionId": req.ConventionID})
}
