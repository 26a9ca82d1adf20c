package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestRespondErrorMatchesWrappedTarget(t *testing.T) {
	rec := httptest.NewRecorder()
	ok := RespondError(rec, fmt.Errorf("load: %w", errMissing),
		Mapping{Target: errMissing, Status: http.StatusNotFound, Title: "Not Found", Detail: "não encontrado"})
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, rec.Code)
	p := decodeProblem(t, rec)
	require.Equal(t, "Not Found", p.Title)
	require.Equal(t, "não encontrado", p.Detail)
	require.Equal(t, http.StatusNotFound, p.Status)
}

func TestRespondErrorEchoesErrorWithoutDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("bad input: %w", errMissing),
		Mapping{Target: errMissing, Status: http.StatusUnprocessableEntity, Title: "Invalid"})
	require.Equal(t, "bad input: missing", decodeProblem(t, rec).Detail)
}

func TestRespondErrorTimeouts(t *testing.T) {
	rec := httptest.NewRecorder()
	require.True(t, RespondError(rec, context.DeadlineExceeded, Timeouts...))
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestRespondErrorHidesUnmatched(t *testing.T) {
	rec := httptest.NewRecorder()
	require.False(t, RespondError(rec, errors.New("pq: connection refused")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, decodeProblem(t, rec).Detail)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", `attachment; filename="r.pdf"`, []byte("%PDF"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, "4", rec.Header().Get("Content-Length"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "%PDF", rec.Body.String())
}
