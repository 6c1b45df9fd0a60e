package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"immersionfacile/internal/immersionoffer/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

// Service defines the immersion offer operations exposed over HTTP.
type Service interface {
	SearchImmersion(ctx context.Context, req *models.SearchRequest) ([]models.SearchResult, error)
	GetImmersionOfferBySiretAndRome(ctx context.Context, siret, rome string) (*models.SearchResult, error)
	ContactEstablishment(ctx context.Context, req *models.ContactRequest) error
}

type Handler struct {
	offers Service
	logger *slog.Logger
}

func New(offers Service, logger *slog.Logger) *Handler {
	return &Handler{offers: offers, logger: logger}
}

// Register mounts the routes used by the front end.
func (h *Handler) Register(r chi.Router) {
	r.Post("/immersion-offers", h.handleSearch)
	r.Post("/contact-establishment", h.handleContact)
}

// RegisterAPIConsumer mounts the partner routes under the API key group.
func (h *Handler) RegisterAPIConsumer(r chi.Router) {
	r.Get("/immersion-offers", h.handleSearchQuery)
	r.Get("/immersion-offers/{siret}/{rome}", h.handleGetOffer)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SearchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.search(w, r, req)
}

func (h *Handler) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.search(w, r, req)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, req *models.SearchRequest) {
	ctx := r.Context()
	results, err := h.offers.SearchImmersion(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "immersion search failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) handleGetOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consumer, ok := requestcontext.APIConsumerFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "api key required"))
		return
	}
	if !consumer.IsAuthorized {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeForbidden, "consumer %s may not read offers", consumer.Name))
		return
	}
	result, err := h.offers.GetImmersionOfferBySiretAndRome(ctx, chi.URLParam(r, "siret"), chi.URLParam(r, "rome"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ContactRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.offers.ContactEstablishment(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "failed to contact establishment",
			"request_id", requestID,
			"siret", req.Siret,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func searchRequestFromQuery(r *http.Request) (*models.SearchRequest, error) {
	q := r.URL.Query()
	lat, err := floatParam(q.Get("latitude"), "latitude")
	if err != nil {
		return nil, err
	}
	lon, err := floatParam(q.Get("longitude"), "longitude")
	if err != nil {
		return nil, err
	}
	distance, err := floatParam(q.Get("distance_km"), "distance_km")
	if err != nil {
		return nil, err
	}
	req := &models.SearchRequest{
		Rome:       q.Get("rome"),
		Location:   geo.Position{Lat: lat, Lon: lon},
		DistanceKm: distance,
	}
	if raw := q.Get("voluntaryToImmersion"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "voluntaryToImmersion must be a boolean")
		}
		req.VoluntaryToImmersion = &v
	}
	return req, nil
}

func floatParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s must be a number", name)
	}
	return v, nil
}
