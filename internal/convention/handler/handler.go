package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"immersionfacile/internal/convention/models"
	notificationservice "immersionfacile/internal/notification/service"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

// Service defines the convention operations exposed over HTTP.
type Service interface {
	AddConvention(ctx context.Context, c *models.Convention) (models.ID, error)
	GetConvention(ctx context.Context, id models.ID) (*models.ConventionRead, error)
	UpdateConvention(ctx context.Context, id models.ID, c *models.Convention) error
	UpdateConventionStatus(ctx context.Context, id models.ID, target models.Status, role models.Role, justification string) error
	SignConvention(ctx context.Context, id models.ID, role models.Role) (*models.Convention, error)
	ListAdminConventions(ctx context.Context, filter models.ListFilter) ([]*models.ConventionRead, error)
	RenewMagicLink(ctx context.Context, expiredJWT, linkFormat string) error
}

// LinkSharer emails a draft convention link to a third party.
type LinkSharer interface {
	ShareConventionLinkByEmail(ctx context.Context, req notificationservice.ShareLinkRequest) error
}

type Handler struct {
	conventions Service
	sharer      LinkSharer
	logger      *slog.Logger
}

func New(conventions Service, sharer LinkSharer, logger *slog.Logger) *Handler {
	return &Handler{conventions: conventions, sharer: sharer, logger: logger}
}

// Register mounts the public convention routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/demandes-immersion", h.handleAdd)
	r.Post("/renew-magic-link", h.handleRenewMagicLink)
	r.Post("/share-immersion-demand", h.handleShare)
}

// RegisterMagicLink mounts the routes reached through a magic link.
// Callers guard r with the magic link middleware.
func (h *Handler) RegisterMagicLink(r chi.Router) {
	r.Get("/auth/demandes-immersion/{id}", h.handleGet)
	r.Post("/auth/demandes-immersion/{id}", h.handleUpdate)
	r.Post("/auth/update-application-status/{id}", h.handleUpdateStatus)
	r.Post("/auth/sign-application/{id}", h.handleSign)
}

// RegisterAdmin mounts the back-office routes. Callers guard r with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/demandes-immersion", h.handleAdminList)
	r.Get("/admin/demandes-immersion/{id}", h.handleAdminGet)
}

type renewMagicLinkRequest struct {
	ExpiredJWT string `json:"expiredJwt"`
	LinkFormat string `json:"linkFormat"`
}

func (r *renewMagicLinkRequest) Validate() error {
	r.ExpiredJWT = strings.TrimSpace(r.ExpiredJWT)
	if r.ExpiredJWT == "" {
		return dErrors.New(dErrors.CodeValidation, "expiredJwt is required")
	}
	if strings.TrimSpace(r.LinkFormat) == "" {
		return dErrors.New(dErrors.CodeValidation, "linkFormat is required")
	}
	return nil
}

type updateStatusRequest struct {
	Status        models.Status `json:"status"`
	Justification string        `json:"justification,omitempty"`
}

func (r *updateStatusRequest) Validate() error {
	if !r.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown status %q", r.Status)
	}
	r.Justification = strings.TrimSpace(r.Justification)
	return nil
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.Convention](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	id, err := h.conventions.AddConvention(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add convention",
			"request_id", requestID,
			"convention_id", req.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleRenewMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[renewMagicLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.conventions.RenewMagicLink(ctx, req.ExpiredJWT, req.LinkFormat); err != nil {
		h.logger.WarnContext(ctx, "failed to renew magic link",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[notificationservice.ShareLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.sharer.ShareConventionLinkByEmail(ctx, *req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.authorize(w, r)
	if !ok {
		return
	}
	c, err := h.conventions.GetConvention(r.Context(), actor.ConventionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.authorize(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.Convention](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.conventions.UpdateConvention(ctx, actor.ConventionID, req); err != nil {
		h.logger.WarnContext(ctx, "failed to update convention",
			"request_id", requestID,
			"convention_id", actor.ConventionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": actor.ConventionID})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor, ok := h.authorize(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	err := h.conventions.UpdateConventionStatus(ctx, actor.ConventionID, req.Status, models.Role(actor.Role), req.Justification)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update convention status",
			"request_id", requestID,
			"convention_id", actor.ConventionID,
			"role", actor.Role,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": actor.ConventionID})
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.authorize(w, r)
	if !ok {
		return
	}
	if _, err := h.conventions.SignConvention(ctx, actor.ConventionID, models.Role(actor.Role)); err != nil {
		h.logger.WarnContext(ctx, "failed to sign convention",
			"request_id", requestcontext.RequestID(ctx),
			"convention_id", actor.ConventionID,
			"role", actor.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": actor.ConventionID})
}

func (h *Handler) handleAdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ListFilter{
		Status:   models.Status(q.Get("status")),
		AgencyID: q.Get("agencyId"),
	}
	conventions, err := h.conventions.ListAdminConventions(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, conventions)
}

func (h *Handler) handleAdminGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.conventions.GetConvention(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

// authorize checks the magic link actor targets the convention in the url.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) (requestcontext.Actor, bool) {
	ctx := r.Context()
	actor, ok := requestcontext.ConventionActor(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "magic link required"))
		return requestcontext.Actor{}, false
	}
	if id := chi.URLParam(r, "id"); id != actor.ConventionID {
		h.logger.WarnContext(ctx, "magic link used on another convention",
			"request_id", requestcontext.RequestID(ctx),
			"convention_id", id,
			"link_convention_id", actor.ConventionID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "magic link does not grant access to this convention"))
		return requestcontext.Actor{}, false
	}
	return actor, true
}
