package bootstrap

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	enrichhandler "mutafriches/internal/enrichment/handler"
	evalhandler "mutafriches/internal/evaluation/handler"
	"mutafriches/internal/platform/metrics"
	"mutafriches/pkg/platform/httputil"
	"mutafriches/pkg/platform/middleware/requestmeta"
)

// NewRouter mounts the public API, /health and /metrics.
func NewRouter(app *App, httpMetrics *metrics.HTTP) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestmeta.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Middleware)

	enrichhandler.New(app.Enrichment, app.Logger).Register(r)
	evalhandler.New(app.Evaluation, app.Logger).Register(r)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.Health(r.Context()); err != nil {
			app.Logger.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
