package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	conventionmodels "immersionfacile/internal/convention/models"
	notificationmodels "immersionfacile/internal/notification/models"
	"immersionfacile/internal/outbox"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/platform/httputil"
	"immersionfacile/pkg/requestcontext"
)

type Authenticator interface {
	Login(ctx context.Context, user, password string) (string, error)
}

// EmailLog lists recently sent emails.
type EmailLog interface {
	LastSent(ctx context.Context) ([]notificationmodels.EmailSent, error)
}

type FailedEvents interface {
	FailedEvents(ctx context.Context) ([]outbox.DebugInfo, error)
}

type TokenMinter interface {
	GenerateToken(ctx context.Context, id conventionmodels.ID, role conventionmodels.Role, email string) (string, error)
}

type Handler struct {
	auth   Authenticator
	emails EmailLog
	events FailedEvents
	tokens TokenMinter
	logger *slog.Logger
}

func New(auth Authenticator, emails EmailLog, events FailedEvents, tokens TokenMinter, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, emails: emails, events: events, tokens: tokens, logger: logger}
}

// Register mounts the unauthenticated login route.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.handleLogin)
}

// RegisterAdmin mounts the back-office routes. Callers guard r with admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/emails", h.handleEmails)
	r.Get("/admin/events/failed", h.handleFailedEvents)
	r.Get("/admin/generate-magic-link", h.handleGenerateMagicLink)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	token, err := h.auth.Login(ctx, req.User, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (h *Handler) handleEmails(w http.ResponseWriter, r *http.Request) {
	sent, err := h.emails.LastSent(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list emails"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sent)
}

func (h *Handler) handleFailedEvents(w http.ResponseWriter, r *http.Request) {
	infos, err := h.events.FailedEvents(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list failed events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, infos)
}

// handleGenerateMagicLink mints a token for support staff acting on a
// convention: GET /admin/generate-magic-link?id=...&role=...
func (h *Handler) handleGenerateMagicLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	req := MagicLinkRequest{
		ID:    q.Get("id"),
		Role:  conventionmodels.Role(q.Get("role")),
		Email: q.Get("email"),
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, err := h.tokens.GenerateToken(ctx, req.ID, req.Role, req.Email)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint magic link"))
		return
	}
	h.logger.InfoContext(ctx, "magic link generated by admin",
		"request_id", requestcontext.RequestID(ctx),
		"admin", requestcontext.AdminUser(ctx),
		"convention_id", req.ID,
		"role", req.Role,
	)
	httputil.WriteJSON(w, http.StatusOK, MagicLinkResponse{JWT: token})
}
