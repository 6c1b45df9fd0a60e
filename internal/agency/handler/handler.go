package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"immersionfacile/internal/agency/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

// Service defines the agency operations exposed over HTTP.
type Service interface {
	AddAgency(ctx context.Context, a *models.Agency) (string, error)
	UpdateAgency(ctx context.Context, id string, status models.Status) error
	GetAgencyPublicInfo(ctx context.Context, id string) (models.PublicInfo, error)
	ListAgencies(ctx context.Context, filters models.Filters) ([]models.IDAndName, error)
	PrivateListAgencies(ctx context.Context, status models.Status) ([]*models.Agency, error)
}

type Handler struct {
	agencies Service
	logger   *slog.Logger
}

func New(agencies Service, logger *slog.Logger) *Handler {
	return &Handler{agencies: agencies, logger: logger}
}

// Register mounts the public agency routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/agencies", h.handleList)
	r.Get("/agencies/{id}/public", h.handleGetPublicInfo)
	r.Post("/agencies", h.handleAdd)
}

// RegisterAdmin mounts the back-office routes. Callers guard r with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/agencies", h.handlePrivateList)
	r.Patch("/admin/agencies/{id}", h.handleUpdateStatus)
}

type updateStatusRequest struct {
	Status models.Status `json:"status"`
}

func (r *updateStatusRequest) Validate() error {
	if !r.Status.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown agency status %q", r.Status)
	}
	return nil
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.Agency](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	id, err := h.agencies.AddAgency(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add agency",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) handleGetPublicInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	info, err := h.agencies.GetAgencyPublicInfo(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filters, err := parseFilters(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	agencies, err := h.agencies.ListAgencies(ctx, filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list agencies",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agencies)
}

func (h *Handler) handlePrivateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agencies, err := h.agencies.PrivateListAgencies(ctx, models.Status(r.URL.Query().Get("status")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agencies)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[updateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.agencies.UpdateAgency(ctx, id, req.Status); err != nil {
		h.logger.WarnContext(ctx, "failed to update agency",
			"request_id", requestID,
			"agency_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "agency status changed by admin",
		"request_id", requestID,
		"agency_id", id,
		"status", req.Status,
		"admin", requestcontext.AdminUser(ctx),
	)
	w.WriteHeader(http.StatusOK)
}

func parseFilters(r *http.Request) (models.Filters, error) {
	q := r.URL.Query()
	filters := models.Filters{
		DepartmentCode: q.Get("departmentCode"),
		Kind:           models.KindFilter(q.Get("kind")),
	}
	switch filters.Kind {
	case "", models.KindFilterPEOnly, models.KindFilterPEExcluded:
	default:
		return filters, dErrors.Newf(dErrors.CodeBadRequest, "unknown kind filter %q", filters.Kind)
	}

	lat, lon, dist := q.Get("lat"), q.Get("lon"), q.Get("distanceKm")
	if lat != "" || lon != "" || dist != "" {
		var (
			pf  models.PositionFilter
			err error
		)
		if pf.Position.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
			return filters, dErrors.New(dErrors.CodeBadRequest, "lat must be a number")
		}
		if pf.Position.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
			return filters, dErrors.New(dErrors.CodeBadRequest, "lon must be a number")
		}
		if pf.DistanceKm, err = strconv.ParseFloat(dist, 64); err != nil || pf.DistanceKm <= 0 {
			return filters, dErrors.New(dErrors.CodeBadRequest, "distanceKm must be a positive number")
		}
		if !pf.Position.Valid() {
			return filters, dErrors.New(dErrors.CodeBadRequest, "position is out of bounds")
		}
		filters.Position = &pf
	}
	return filters, nil
}
