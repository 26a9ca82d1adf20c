package recibos

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var meses = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// formatBRL renders an amount with two decimals and a comma separator.
func formatBRL(v decimal.Decimal) string {
	return strings.Replace(v.StringFixed(2), ".", ",", 1)
}

// formatDate renders dd/MM/yyyy.
func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// formatDateTime renders dd/MM/yyyy HH:mm.
func formatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// formatLongDate renders "dd de <mês> de yyyy".
func formatLongDate(t time.Time) string {
	return pad2(t.Day()) + " de " + meses[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}

// formatLongDateTime renders "dd de <mês> de yyyy, às HH:mm".
func formatLongDateTime(t time.Time) string {
	return formatLongDate(t) + ", às " + t.Format("15:04")
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// companyDataLine joins the tax id, phone and e-mail of the issuer, skipping
// absent parts.
func companyDataLine(c Company) string {
	parts := make([]string, 0, 3)
	if c.CpfCnpj != "" {
		label := "CNPJ"
		if c.TipoPessoa == PessoaFisica {
			label = "CPF"
		}
		parts = append(parts, label+": "+c.CpfCnpj)
	}
	if c.Telefone != "" {
		parts = append(parts, "Tel: "+c.Telefone)
	}
	if c.Email != "" {
		parts = append(parts, "Email: "+c.Email)
	}
	return strings.Join(parts, " • ")
}

// companyAddressLine joins street, city/state and CEP. It is empty when the
// street is absent; city/state needs both parts.
func companyAddressLine(c Company) string {
	if c.Endereco == "" {
		return ""
	}
	line := c.Endereco
	if c.Cidade != "" && c.Estado != "" {
		line += " - " + c.Cidade + "/" + c.Estado
	}
	if c.CEP != "" {
		line += " - CEP: " + c.CEP
	}
	return line
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
