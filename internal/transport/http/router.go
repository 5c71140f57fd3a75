// Package httptransport is the thin HTTP layer. It parses requests into
// native values and delegates to the ingestion and selection services;
// business logic stays out of the handlers.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"projectdir/internal/ingest"
	"projectdir/internal/platform/metrics"
	"projectdir/internal/platform/middleware"
	"projectdir/internal/selection"
)

// Handler bundles the services the routes delegate to.
type Handler struct {
	logger    *slog.Logger
	ingest    *ingest.Service
	selection *selection.Service
}

func NewHandler(ingestSvc *ingest.Service, selectionSvc *selection.Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		ingest:    ingestSvc,
		selection: selectionSvc,
	}
}

// NewRouter wires all public endpoints behind the shared middleware chain.
// The activity middleware is optional so tests can run without a log file.
func NewRouter(h *Handler, m *metrics.Metrics, activity func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Latency(m))
	if activity != nil {
		r.Use(activity)
	}

	r.Get("/", h.handleIndex)
	r.Post("/createproject", h.handleCreateProject)
	r.Get("/requestproject", h.handleRequestProject)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// handleIndex is the liveness probe.
func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Heya!"))
}
