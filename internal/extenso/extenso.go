// Package extenso spells out monetary amounts in Brazilian Portuguese, the way
// they are written on receipts ("cento e cinquenta reais e 20 centavos").
//
// Only whole parts between 0 and 999 are spelled correctly. Larger, negative
// or non-finite amounts are not rejected; the output for them is incomplete.
package extenso

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Limit is the first whole amount the converter can no longer spell.
const Limit = 1000

var (
	unidades  = []string{"", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove"}
	dezenas   = []string{"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	especiais = []string{"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove"}
	centenas  = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos", "seiscentos", "setecentos", "oitocentos", "novecentos"}
)

var hundred = decimal.NewFromInt(100)

// Reais returns the written-out form of amount in reais and centavos.
//
// The hundreds word is dropped for whole parts of Limit or more, so 1500
// comes out as " reais" and 1250 as " e cinquenta reais". Negative amounts
// are not spelled either. Check InRange before printing the result.
func Reais(amount decimal.Decimal) string {
	whole := amount.Floor()
	cents := amount.Sub(whole).Mul(hundred).Round(0).IntPart()
	n := whole.IntPart()

	if n == 0 {
		if cents > 0 {
			return strconv.FormatInt(cents, 10) + " centavos"
		}
		return "zero reais"
	}

	var b strings.Builder
	rest := n
	if rest >= 100 {
		if rest == 100 {
			b.WriteString("cem")
		} else {
			b.WriteString(word(centenas, rest/100))
		}
		rest %= 100
		if rest > 0 {
			b.WriteString(" e ")
		}
	}

	if rest >= 20 {
		b.WriteString(word(dezenas, rest/10))
		rest %= 10
		if rest > 0 {
			b.WriteString(" e ")
		}
	} else if rest >= 10 {
		b.WriteString(word(especiais, rest-10))
		rest = 0
	}

	if rest > 0 {
		b.WriteString(word(unidades, rest))
	}

	if n == 1 {
		b.WriteString(" real")
	} else {
		b.WriteString(" reais")
	}

	if cents > 0 {
		b.WriteString(" e ")
		b.WriteString(strconv.FormatInt(cents, 10))
		b.WriteString(" centavos")
	}
	return b.String()
}

// FromFloat is a convenience wrapper around Reais for float inputs.
func FromFloat(amount float64) string {
	return Reais(decimal.NewFromFloat(amount))
}

// InRange reports whether amount lies in the range Reais spells correctly.
func InRange(amount decimal.Decimal) bool {
	return !amount.IsNegative() && amount.LessThan(decimal.NewFromInt(Limit))
}

// word looks up i in table; out of range indexes yield an empty word.
func word(table []string, i int64) string {
	if i < 0 || i >= int64(len(table)) {
		return ""
	}
	return table[i]
}
