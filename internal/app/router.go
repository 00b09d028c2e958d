package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/provender-erp/provender/internal/observability"
	"github.com/provender-erp/provender/internal/payments"
	"github.com/provender-erp/provender/internal/stock"
	"github.com/provender-erp/provender/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	StockHandler    *stock.Handler
	PaymentsHandler *payments.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Provender defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.StockHandler != nil {
		r.Route("/stock", params.StockHandler.MountRoutes)
	}
	if params.PaymentsHandler != nil {
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
