// Package http assembles the HTTP surface: middleware chain, feature routes
// and the operational endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brokerdesk/internal/platform/metrics"
	"brokerdesk/internal/platform/middleware"
	"brokerdesk/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// Registrar is anything that mounts routes on the API router. Every feature
// handler satisfies this.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports backend reachability for /healthz. Nil checkers are
// skipped, so degraded deployments still come up.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	HTTPMetrics *metrics.HTTP
	Handlers    []Registrar

	// WebSocket and metrics endpoints sit outside the JSON middleware chain.
	WebSocket Registrar

	Postgres HealthChecker
	Redis    HealthChecker
}

// NewRouter builds the full server handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.HTTPMetrics.Middleware)

	r.Get("/healthz", healthHandler(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if deps.WebSocket != nil {
		deps.WebSocket.Register(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(middleware.ContentTypeJSON)
		for _, handler := range deps.Handlers {
			handler.Register(r)
		}
	})
	return r
}

func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, checker := range map[string]HealthChecker{
			"postgres": deps.Postgres,
			"redis":    deps.Redis,
		} {
			if checker == nil {
				continue
			}
			if err := checker.Health(r.Context()); err != nil {
				status[name] = err.Error()
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			} else {
				status[name] = "ok"
			}
		}
		shared.WriteJSON(w, code, status)
	}
}
