// Package export writes the enriched service history as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/atende-erp/atende/internal/historico"
)

// SheetName is the worksheet holding the history.
const SheetName = "Histórico"

// Header is the column header shared by both formats.
var Header = []string{"Data do atendimento", "Cliente", "Consultor", "Serviço", "Forma de pagamento", "Valor", "Observações"}

func row(item historico.Item) []string {
	valor := ""
	if item.Valor != nil {
		valor = strings.Replace(item.Valor.StringFixed(2), ".", ",", 1)
	}
	obs := ""
	if item.Observacoes != nil {
		obs = *item.Observacoes
	}
	return []string{
		item.DataAtendimento.Format("02/01/2006 15:04"),
		item.ClienteNome,
		item.ConsultorNome,
		item.ServicoNome,
		item.FormaPagamentoNome,
		valor,
		obs,
	}
}

// WriteCSV serialises the history. Values use the Brazilian decimal comma,
// so fields are separated with semicolons.
func WriteCSV(w io.Writer, items []historico.Item) error {
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write(row(item)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a single-sheet workbook. Amounts are numeric cells.
func WriteXLSX(w io.Writer, items []historico.Item) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("export: style: %w", err)
	}
	for i, header := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return err
	}
	for i, item := range items {
		r := i + 2
		values := row(item)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			var v any = value
			if col == 5 && item.Valor != nil {
				v = item.Valor.InexactFloat64()
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
		cell, _ := excelize.CoordinatesToCellName(6, r)
		if err := f.SetCellStyle(SheetName, cell, cell, money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "G", 22); err != nil {
		return err
	}
	return f.Write(w)
}
