package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"immersionfacile/internal/establishment/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

// Service defines the establishment operations exposed over HTTP.
type Service interface {
	AddFormEstablishment(ctx context.Context, f *models.FormEstablishment) (string, error)
	IsSiretAlreadySaved(ctx context.Context, siret string) (bool, error)
	GetFormEstablishment(ctx context.Context, siret string) (*models.FormEstablishment, error)
	RequestEditLink(ctx context.Context, siret string) error
	EditFormEstablishment(ctx context.Context, siret string, f *models.FormEstablishment) error
}

// EditTokens resolves an edit link token to the siret it grants.
type EditTokens interface {
	AuthenticateEstablishment(ctx context.Context, token string) (string, error)
}

type Handler struct {
	establishments Service
	tokens         EditTokens
	logger         *slog.Logger
}

func New(establishments Service, tokens EditTokens, logger *slog.Logger) *Handler {
	return &Handler{establishments: establishments, tokens: tokens, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/form-establishments", h.handleAdd)
	r.Get("/form-already-exists/{siret}", h.handleAlreadyExists)
	r.Post("/request-email-to-update-form", h.handleRequestEditLink)
	r.Get("/form-establishments/{jwt}", h.handleGetForEdit)
	r.Put("/form-establishments/{jwt}", h.handleEdit)
}

// RegisterAPIConsumer mounts the partner routes under the API key group.
func (h *Handler) RegisterAPIConsumer(r chi.Router) {
	r.Post("/form-establishments", h.handleAddFromConsumer)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.FormEstablishment](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.add(w, r, req)
}

// handleAddFromConsumer records the partner as the form source.
func (h *Handler) handleAddFromConsumer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consumer, ok := requestcontext.APIConsumerFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "api key required"))
		return
	}
	if !consumer.IsAuthorized {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeForbidden, "consumer %s may not add establishments", consumer.Name))
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.FormEstablishment](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req.Source = models.Source(consumer.Name)
	h.add(w, r, req)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request, req *models.FormEstablishment) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	siret, err := h.establishments.AddFormEstablishment(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add form establishment",
			"request_id", requestID,
			"siret", req.Siret,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"siret": siret})
}

func (h *Handler) handleAlreadyExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.establishments.IsSiretAlreadySaved(r.Context(), chi.URLParam(r, "siret"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, exists)
}

func (h *Handler) handleRequestEditLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.EditLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.establishments.RequestEditLink(ctx, req.Siret); err != nil {
		h.logger.WarnContext(ctx, "failed to request edit link",
			"request_id", requestID,
			"siret", req.Siret,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, nil)
}

func (h *Handler) handleGetForEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siret, err := h.tokens.AuthenticateEstablishment(ctx, chi.URLParam(r, "jwt"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	f, err := h.establishments.GetFormEstablishment(ctx, siret)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	siret, err := h.tokens.AuthenticateEstablishment(ctx, chi.URLParam(r, "jwt"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.FormEstablishment](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.establishments.EditFormEstablishment(ctx, siret, req); err != nil {
		h.logger.WarnContext(ctx, "failed to edit form establishment",
			"request_id", requestID,
			"siret", siret,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"siret": siret})
}
