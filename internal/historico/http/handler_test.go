package historicohttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atende-erp/atende/internal/historico"
)

type stubLoader struct {
	items   []historico.Item
	err     error
	filters historico.Filters
}

func (s *stubLoader) Load(_ context.Context, filters historico.Filters) ([]historico.Item, error) {
	s.filters = filters
	return s.items, s.err
}

func router(loader Loader) http.Handler {
	h := NewHandler(nil, loader)
	h.now = func() time.Time { return time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestListAppliesFilters(t *testing.T) {
	consultor := uuid.New()
	loader := &stubLoader{items: []historico.Item{{ConsultorNome: "Dra. Ana"}}}
	rec := get(router(loader), "/historico/?consultor_id="+consultor.String())

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, loader.filters.ConsultorID)
	require.Equal(t, consultor, *loader.filters.ConsultorID)
	require.Nil(t, loader.filters.ClienteID)

	var body struct {
		Items []map[string]any `json:"items"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	require.Equal(t, "Dra. Ana", body.Items[0]["consultor_nome"])
}

func TestListEmptyIsArray(t *testing.T) {
	rec := get(router(&stubLoader{}), "/historico/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestListRejectsInvalidFilters(t *testing.T) {
	loader := &stubLoader{}
	rec := get(router(loader), "/historico/?cliente_id=abc")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFailureUsesNotificationText(t *testing.T) {
	rec := get(router(&stubLoader{err: errors.New("down")}), "/historico/")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), historico.LoadFailure.Title)
	require.Contains(t, rec.Body.String(), historico.LoadFailure.Description)
}

func TestExportCSV(t *testing.T) {
	loader := &stubLoader{items: []historico.Item{{ClienteNome: "Carlos", FormaPagamentoNome: historico.FallbackNotInformed}}}
	rec := get(router(loader), "/historico/export.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `attachment; filename="historico-20250310-0800.csv"`, rec.Header().Get("Content-Disposition"))
	reader := csv.NewReader(strings.NewReader(rec.Body.String()))
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Carlos", records[1][1])
}

func TestExportXLSX(t *testing.T) {
	rec := get(router(&stubLoader{items: []historico.Item{{ClienteNome: "Carlos"}}}), "/historico/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}
