// Package httptransport assembles the chi router: shared middleware, the
// health and metrics endpoints, and the route groups of every module.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"immersionfacile/internal/platform/metrics"
	"immersionfacile/pkg/platform/httputil"
	adminmw "immersionfacile/pkg/platform/middleware/admin"
	"immersionfacile/pkg/platform/middleware/apikey"
	authmw "immersionfacile/pkg/platform/middleware/auth"
	"immersionfacile/pkg/platform/middleware/metadata"
	request "immersionfacile/pkg/platform/middleware/request"
	"immersionfacile/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Routes mounts unauthenticated routes.
type Routes interface {
	Register(r chi.Router)
}

// MagicLinkRoutes mounts routes reached through a convention magic link.
type MagicLinkRoutes interface {
	RegisterMagicLink(r chi.Router)
}

// AdminRoutes mounts back-office routes.
type AdminRoutes interface {
	RegisterAdmin(r chi.Router)
}

// APIConsumerRoutes mounts the partner API under /v1.
type APIConsumerRoutes interface {
	RegisterAPIConsumer(r chi.Router)
}

// HealthCheck reports whether a dependency answers.
type HealthCheck func(ctx context.Context) error

// Handlers groups the module handlers by guard.
// Uploads take multipart bodies and skip the JSON content type check.
type Handlers struct {
	Public      []Routes
	Uploads     []Routes
	MagicLink   []MagicLinkRoutes
	Admin       []AdminRoutes
	APIConsumer []APIConsumerRoutes
}

type Config struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	MagicLinks     authmw.MagicLinkValidator
	Admins         adminmw.TokenValidator
	APIConsumers   apikey.ConsumerValidator
	HealthChecks   map[string]HealthCheck
	RequestTimeout time.Duration
	// TrustedProxies may set X-Forwarded-For.
	TrustedProxies []netip.Prefix
	// Throttle guards the public, upload and partner routes when set.
	Throttle func(http.Handler) http.Handler
}

// NewRouter wires the middleware chain and every route group.
func NewRouter(cfg Config, h Handlers) http.Handler {
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.Logger(cfg.Logger, cfg.Metrics))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", healthHandler(cfg.HealthChecks, cfg.Logger))
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		throttle(r, cfg.Throttle)
		for _, routes := range h.Uploads {
			routes.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Group(func(r chi.Router) {
			throttle(r, cfg.Throttle)
			for _, routes := range h.Public {
				routes.Register(r)
			}
		})

		if len(h.APIConsumer) > 0 {
			r.Route("/v1", func(r chi.Router) {
				throttle(r, cfg.Throttle)
				r.Use(apikey.Identify(cfg.APIConsumers, cfg.Logger))
				for _, routes := range h.APIConsumer {
					routes.RegisterAPIConsumer(r)
				}
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireMagicLink(cfg.MagicLinks, cfg.Logger))
			for _, routes := range h.MagicLink {
				routes.RegisterMagicLink(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdmin(cfg.Admins, cfg.Logger))
			for _, routes := range h.Admin {
				routes.RegisterAdmin(r)
			}
		})
	})

	return otelhttp.NewHandler(r, "immersion-facile")
}

func throttle(r chi.Router, mw func(http.Handler) http.Handler) {
	if mw != nil {
		r.Use(mw)
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
