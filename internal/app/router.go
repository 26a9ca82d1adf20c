package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	historicohttp "github.com/atende-erp/atende/internal/historico/http"
	"github.com/atende-erp/atende/internal/observability"
	recibohttp "github.com/atende-erp/atende/internal/recibos/http"
	"github.com/atende-erp/atende/jobs"
	"github.com/atende-erp/atende/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	ReceiptHandler   *recibohttp.Handler
	HistoricoHandler *historicohttp.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with atende defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.ReceiptHandler != nil {
		params.ReceiptHandler.MountRoutes(r)
	}
	if params.HistoricoHandler != nil {
		params.HistoricoHandler.MountRoutes(r)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}
