package http

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterConfig selects the handlers to mount. Nil handlers are skipped.
type RouterConfig struct {
	Resources    *ResourceHandler
	Plans        *PlanHandler
	Reservations *ReservationHandler
	Health       HealthChecker
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter mounts the configured handlers and wraps them in Middleware,
// first entry outermost.
func NewRouter(cfg RouterConfig) http.Handler {
	router := httprouter.New()
	responder := newResponder(nil)

	router.GET("/healthz", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if cfg.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Health.Ping(ctx); err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "health check failed", "error", err)
				responder.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
	})

	if cfg.Resources != nil {
		router.GET("/resources", cfg.Resources.List)
		router.POST("/resources", cfg.Resources.Create)
		router.POST("/resources/:id/unlock", cfg.Resources.Unlock)
	}

	if cfg.Plans != nil {
		router.POST("/selections", cfg.Plans.Select)
		router.POST("/plans", cfg.Plans.Submit)
		router.GET("/availability", cfg.Plans.Availability)
	}

	if cfg.Reservations != nil {
		router.GET("/reservations", cfg.Reservations.List)
		router.POST("/reservations", cfg.Reservations.Commit)
		router.GET("/reservations/:id", cfg.Reservations.Get)
		router.DELETE("/reservations/:id", cfg.Reservations.Delete)
		router.POST("/reservations/:id/cancel", cfg.Reservations.Cancel)
	}

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{ErrorCode: "NOT_FOUND", Message: "no such endpoint"})
	})

	var handler http.Handler = router
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

type healthResponse struct {
	Status string `json:"status"`
}
