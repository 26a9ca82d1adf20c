// Package historicohttp exposes the enriched service history.
package historicohttp

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atende-erp/atende/internal/historico"
	"github.com/atende-erp/atende/internal/historico/export"
	"github.com/atende-erp/atende/internal/platform/httpx"
)

const (
	exportRateLimit  = 10
	exportRateWindow = time.Minute
)

// Loader is the history capability used by the handler.
type Loader interface {
	Load(ctx context.Context, filters historico.Filters) ([]historico.Item, error)
}

// Handler wires HTTP endpoints for the service history.
type Handler struct {
	logger    *slog.Logger
	loader    Loader
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs a Handler value.
func NewHandler(logger *slog.Logger, loader Loader) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, loader: loader, validator: validator.New(), now: time.Now}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "limite de exportações excedido")
		}),
	)
	r.Route("/historico", func(r chi.Router) {
		r.Get("/", h.list)
		r.Group(func(gr chi.Router) {
			gr.Use(limiter)
			gr.Get("/export.csv", h.exportCSV)
			gr.Get("/export.xlsx", h.exportXLSX)
		})
	})
}

type filterQuery struct {
	ConsultorID string `validate:"omitempty,uuid"`
	ClienteID   string `validate:"omitempty,uuid"`
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) (historico.Filters, bool) {
	q := filterQuery{
		ConsultorID: strings.TrimSpace(r.URL.Query().Get("consultor_id")),
		ClienteID:   strings.TrimSpace(r.URL.Query().Get("cliente_id")),
	}
	if err := h.validator.Struct(q); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "filtros inválidos")
		return historico.Filters{}, false
	}
	var filters historico.Filters
	if q.ConsultorID != "" {
		id := uuid.MustParse(q.ConsultorID)
		filters.ConsultorID = &id
	}
	if q.ClienteID != "" {
		id := uuid.MustParse(q.ClienteID)
		filters.ClienteID = &id
	}
	return filters, true
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) ([]historico.Item, bool) {
	filters, ok := h.filters(w, r)
	if !ok {
		return nil, false
	}
	items, err := h.loader.Load(r.Context(), filters)
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, historico.LoadFailure.Title, historico.LoadFailure.Description)
		return nil, false
	}
	return items, true
}

type listResponse struct {
	Items []historico.Item `json:"items"`
	Count int              `json:"count"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r)
	if !ok {
		return
	}
	if items == nil {
		items = []historico.Item{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Count: len(items)})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r)
	if !ok {
		return
	}
	h.attach(w, "text/csv; charset=utf-8", "csv", func(buf *bytes.Buffer) error {
		return export.WriteCSV(buf, items)
	})
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r)
	if !ok {
		return
	}
	h.attach(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", func(buf *bytes.Buffer) error {
		return export.WriteXLSX(buf, items)
	})
}

func (h *Handler) attach(w http.ResponseWriter, contentType, ext string, write func(*bytes.Buffer) error) {
	buf := &bytes.Buffer{}
	if err := write(buf); err != nil {
		h.logger.Error("historico export", slog.String("format", ext), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	name := "historico-" + h.now().Format("20060102-1504") + "." + ext
	httpx.Attachment(w, contentType, `attachment; filename="`+name+`"`, buf.Bytes())
}
