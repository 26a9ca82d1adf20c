package recibohttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/atende-erp/atende/internal/recibos"
	"github.com/atende-erp/atende/jobs"
)

const receiptID = "5b0d6b4e-2d9e-4a51-9f0d-0b1f5a2b7c11"

type fakeService struct {
	doc      recibos.Document
	artifact recibos.Artifact
	err      error
	calls    []string
}

func (f *fakeService) Compose(_ context.Context, id string) (recibos.Document, error) {
	f.calls = append(f.calls, "compose:"+id)
	return f.doc, f.err
}

func (f *fakeService) Render(_ context.Context, id string) (recibos.Artifact, error) {
	f.calls = append(f.calls, "render:"+id)
	return f.artifact, f.err
}

type fakeEnqueuer struct {
	payload jobs.ReceiptRenderPayload
	err     error
}

func (f *fakeEnqueuer) EnqueueReceiptRender(_ context.Context, payload jobs.ReceiptRenderPayload) (*asynq.TaskInfo, error) {
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault}, nil
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	return rec
}

func TestPDFServesAttachment(t *testing.T) {
	svc := &fakeService{artifact: recibos.Artifact{
		Filename:    "recibo-42.pdf",
		ContentType: recibos.ContentTypePDF,
		Data:        []byte("%PDF-1.3"),
	}}
	rec := do(t, newRouter(NewHandler(nil, svc, nil)), http.MethodGet, "/recibos/"+receiptID+"/pdf")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="recibo-42.pdf"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "%PDF-1.3", rec.Body.String())
	require.Equal(t, []string{"render:" + receiptID}, svc.calls)
}

func TestPDFRejectsInvalidID(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newRouter(NewHandler(nil, svc, nil)), http.MethodGet, "/recibos/not-a-uuid/pdf")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.calls)
}

func TestPDFMapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{recibos.ErrNotFound, http.StatusNotFound},
		{errors.Join(recibos.ErrInvalidReceipt, errors.New("numero")), http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := do(t, newRouter(NewHandler(nil, &fakeService{err: tc.err}, nil)), http.MethodGet, "/recibos/"+receiptID+"/pdf")
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestPreviewReturnsInstructions(t *testing.T) {
	doc := recibos.Document{
		Filename: "recibo-7.pdf",
		Variant:  recibos.VariantNormal,
		Amount:   recibos.AmountResolution{Value: decimal.RequireFromString("300"), Source: recibos.AmountFromPayment},
		Installments: recibos.InstallmentResolution{
			Source: recibos.InstallmentsFromReceipt,
			Items: []recibos.Installment{
				{Numero: 1, Valor: decimal.RequireFromString("150")},
				{Numero: 2, Valor: decimal.RequireFromString("150")},
			},
		},
		Instructions: []recibos.Instruction{
			{Kind: recibos.KindText, X: 20, Y: 20, Text: "RECIBO", Align: recibos.AlignCenter},
			{Kind: recibos.KindPageBreak},
		},
	}
	rec := do(t, newRouter(NewHandler(nil, &fakeService{doc: doc}, nil)), http.MethodGet, "/recibos/"+receiptID+"/preview")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Filename     string `json:"filename"`
		Pages        int    `json:"pages"`
		Installments struct {
			Source string `json:"source"`
			Count  int    `json:"count"`
			Sum    string `json:"sum"`
		} `json:"installments"`
		Amount struct {
			Source string `json:"source"`
		} `json:"amount"`
		Instructions []map[string]any `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "recibo-7.pdf", body.Filename)
	require.Equal(t, 2, body.Pages)
	require.Equal(t, "receipt", body.Installments.Source)
	require.Equal(t, 2, body.Installments.Count)
	require.Equal(t, "300.00", body.Installments.Sum)
	require.Equal(t, "payment", body.Amount.Source)
	require.Len(t, body.Instructions, 2)
}

func TestEnqueueAccepted(t *testing.T) {
	enq := &fakeEnqueuer{}
	rec := do(t, newRouter(NewHandler(nil, &fakeService{}, enq)), http.MethodPost, "/recibos/"+receiptID+"/pdf/jobs")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, receiptID, enq.payload.ReciboID)
	require.Contains(t, rec.Body.String(), `"task_id":"task-1"`)
}

func TestEnqueueWithoutQueue(t *testing.T) {
	rec := do(t, newRouter(NewHandler(nil, &fakeService{}, nil)), http.MethodPost, "/recibos/"+receiptID+"/pdf/jobs")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, newRouter(NewHandler(nil, &fakeService{}, &fakeEnqueuer{err: errors.New("redis down")})), http.MethodPost, "/recibos/"+receiptID+"/pdf/jobs")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := newRouter(NewHandler(nil, &fakeService{err: recibos.ErrNotFound}, nil))
	for i := 0; i < rateLimit; i++ {
		require.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/recibos/"+receiptID+"/preview").Code)
	}
	require.Equal(t, http.StatusTooManyRequests, do(t, router, http.MethodGet, "/recibos/"+receiptID+"/preview").Code)
}

func TestContentDisposition(t *testing.T) {
	require.Equal(t, `attachment; filename="recibo-1.pdf"`, ContentDisposition("recibo-1.pdf"))

	header := ContentDisposition("recibo-doação-Nº1.pdf")
	require.True(t, strings.HasPrefix(header, `attachment; filename="recibo-doacao-N_1.pdf"`), header)
	require.Contains(t, header, "filename*=UTF-8''recibo-doa%C3%A7%C3%A3o-N%C2%BA1.pdf")
}

func TestASCIIFilename(t *testing.T) {
	require.Equal(t, "recibo-Joao.pdf", ASCIIFilename("recibo-João.pdf"))
	require.Equal(t, "a_b_c.pdf", ASCIIFilename(`a"b\c.pdf`))
	require.Equal(t, "recibo.pdf", ASCIIFilename(""))
}
