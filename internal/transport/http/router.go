// Package httptransport assembles the HTTP surface: shared middleware, the
// public and authenticated route groups, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shareregistry/internal/platform/metrics"
	"shareregistry/pkg/platform/middleware/auth"
	"shareregistry/pkg/platform/middleware/metadata"
	"shareregistry/pkg/platform/middleware/request"
	"shareregistry/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by the feature handlers.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// PublicRouteRegistrar is implemented by handlers that also expose
// unauthenticated routes.
type PublicRouteRegistrar interface {
	RegisterPublic(r chi.Router)
}

type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Validator   auth.JWTValidator
	Revocations auth.TokenRevocationChecker
	Checks      []Check
	Handlers    []RouteRegistrar
	// MetricsHandler serves /metrics; nil leaves the route out.
	MetricsHandler http.Handler
}

// NewRouter wires every route. Only login, forgot-password and the
// operational endpoints are reachable without a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	health := newHealthHandler(d.Logger, d.Checks)
	r.Get("/health", health.HandleHealth)
	r.Get("/ready", health.HandleReady)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	for _, h := range d.Handlers {
		if p, ok := h.(PublicRouteRegistrar); ok {
			p.RegisterPublic(r)
		}
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(d.Validator, d.Revocations, d.Logger))
		for _, h := range d.Handlers {
			h.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","error_description":"route not found"}`))
	})
	return r
}
