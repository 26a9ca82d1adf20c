// Package recibohttp serves receipt PDFs, layout previews and render jobs.
package recibohttp

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/atende-erp/atende/internal/platform/httpx"
	"github.com/atende-erp/atende/internal/recibos"
	"github.com/atende-erp/atende/jobs"
)

const (
	rateLimit  = 20
	rateWindow = time.Minute
)

// Service is the receipt pipeline used by the handler.
type Service interface {
	Compose(ctx context.Context, id string) (recibos.Document, error)
	Render(ctx context.Context, id string) (recibos.Artifact, error)
}

// Enqueuer submits background render jobs.
type Enqueuer interface {
	EnqueueReceiptRender(ctx context.Context, payload jobs.ReceiptRenderPayload) (*asynq.TaskInfo, error)
}

// Handler wires HTTP endpoints for receipts.
type Handler struct {
	logger    *slog.Logger
	service   Service
	jobs      Enqueuer
	validator *validator.Validate
}

// NewHandler constructs a Handler value. The enqueuer is optional.
func NewHandler(logger *slog.Logger, service Service, enqueuer Enqueuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, jobs: enqueuer, validator: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "limite de requisições excedido")
		}),
	)
	r.Route("/recibos", func(r chi.Router) {
		r.Use(limiter)
		r.Get("/{id}/pdf", h.pdf)
		r.Get("/{id}/preview", h.preview)
		r.Post("/{id}/pdf/jobs", h.enqueue)
	})
}

type receiptParams struct {
	ID string `validate:"required,uuid"`
}

func (h *Handler) receiptID(w http.ResponseWriter, r *http.Request) (string, bool) {
	params := receiptParams{ID: strings.TrimSpace(chi.URLParam(r, "id"))}
	if err := h.validator.Struct(params); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id do recibo inválido")
		return "", false
	}
	return params.ID, true
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	artifact, err := h.service.Render(r.Context(), id)
	if err != nil {
		h.fail(w, id, "render receipt", err)
		return
	}
	httpx.Attachment(w, artifact.ContentType, ContentDisposition(artifact.Filename), artifact.Data)
}

type previewResponse struct {
	Filename     string                   `json:"filename"`
	Variant      recibos.Variant          `json:"variant"`
	Pages        int                      `json:"pages"`
	Amount       recibos.AmountResolution `json:"amount"`
	Installments installmentsSummary      `json:"installments"`
	Instructions []recibos.Instruction    `json:"instructions"`
}

type installmentsSummary struct {
	Source recibos.InstallmentSource `json:"source"`
	Count  int                       `json:"count"`
	Sum    string                    `json:"sum"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Compose(r.Context(), id)
	if err != nil {
		h.fail(w, id, "compose receipt", err)
		return
	}
	httpx.JSON(w, http.StatusOK, previewResponse{
		Filename: doc.Filename,
		Variant:  doc.Variant,
		Pages:    doc.Pages(),
		Amount:   doc.Amount,
		Installments: installmentsSummary{
			Source: doc.Installments.Source,
			Count:  len(doc.Installments.Items),
			Sum:    doc.Installments.Sum().StringFixed(2),
		},
		Instructions: doc.Instructions,
	})
}

type enqueueResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.receiptID(w, r)
	if !ok {
		return
	}
	if h.jobs == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "fila de processamento indisponível")
		return
	}
	info, err := h.jobs.EnqueueReceiptRender(r.Context(), jobs.ReceiptRenderPayload{ReciboID: id})
	if err != nil {
		h.logger.Error("enqueue receipt render", slog.String("recibo_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Service Unavailable", "não foi possível agendar a geração do recibo")
		return
	}
	httpx.JSON(w, http.StatusAccepted, enqueueResponse{TaskID: info.ID, Queue: info.Queue})
}

var receiptErrors = append([]httpx.Mapping{
	{Target: recibos.ErrNotFound, Status: http.StatusNotFound, Title: "Not Found", Detail: "recibo não encontrado"},
	{Target: recibos.ErrInvalidReceipt, Status: http.StatusUnprocessableEntity, Title: "Invalid Receipt"},
}, timeoutMappings()...)

func timeoutMappings() []httpx.Mapping {
	out := make([]httpx.Mapping, len(httpx.Timeouts))
	for i, m := range httpx.Timeouts {
		m.Detail = "tempo esgotado ao gerar o recibo"
		out[i] = m
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, id, op string, err error) {
	if !httpx.RespondError(w, err, receiptErrors...) {
		h.logger.Error(op, slog.String("recibo_id", id), slog.Any("error", err))
	}
}

// ContentDisposition builds an attachment header with an ASCII fallback
// filename plus the UTF-8 encoded original.
func ContentDisposition(filename string) string {
	fallback := ASCIIFilename(filename)
	header := `attachment; filename="` + fallback + `"`
	if fallback != filename {
		header += "; filename*=UTF-8''" + url.PathEscape(filename)
	}
	return header
}

// ASCIIFilename strips accents and replaces anything outside printable ASCII.
func ASCIIFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r == '"' || r == '\\' || r == '/':
			b.WriteByte('_')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "recibo.pdf"
	}
	return b.String()
}
