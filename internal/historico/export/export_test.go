package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/atende-erp/atende/internal/historico"
)

func sampleItems() []historico.Item {
	valor := decimal.RequireFromString("120.5")
	obs := "primeira sessão; retorno"
	return []historico.Item{
		{
			Record:             historico.Record{DataAtendimento: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), Valor: &valor, Observacoes: &obs},
			ClienteNome:        "Carlos",
			ConsultorNome:      "Dra. Ana",
			ServicoNome:        "Fisioterapia",
			FormaPagamentoNome: "PIX",
		},
		{
			Record:             historico.Record{DataAtendimento: time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC)},
			ClienteNome:        "Bia",
			ConsultorNome:      historico.FallbackNotFound,
			ServicoNome:        "Pilates",
			FormaPagamentoNome: historico.FallbackNotInformed,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleItems()))

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, Header, records[0])
	require.Equal(t, []string{"10/03/2025 14:30", "Carlos", "Dra. Ana", "Fisioterapia", "PIX", "120,50", "primeira sessão; retorno"}, records[1])
	require.Equal(t, historico.FallbackNotFound, records[2][2])
	require.Equal(t, "", records[2][5])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleItems()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Header, rows[0])
	require.Equal(t, "Carlos", rows[1][1])
	require.Equal(t, historico.FallbackNotInformed, rows[2][4])

	raw, err := f.GetCellValue(SheetName, "F2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "120.5", raw)
}
