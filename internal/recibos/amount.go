package recibos

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AmountSource names the field the authoritative amount was taken from.
type AmountSource string

const (
	AmountFromOriginal AmountSource = "original"
	AmountFromPayment  AmountSource = "payment"
	AmountFromReceipt  AmountSource = "receipt"
)

// AmountResolution is the single amount every money text on a receipt derives from.
type AmountResolution struct {
	Value  decimal.Decimal `json:"value"`
	Source AmountSource    `json:"source"`
}

// ResolveAmount picks the payment's original amount, then the payment amount,
// then the receipt amount. Zero payment amounts fall through to the next one.
func ResolveAmount(r Receipt) AmountResolution {
	if p := r.Pagamento; p != nil {
		if p.ValorOriginal != nil && !p.ValorOriginal.IsZero() {
			return AmountResolution{Value: *p.ValorOriginal, Source: AmountFromOriginal}
		}
		if p.Valor != nil && !p.Valor.IsZero() {
			return AmountResolution{Value: *p.Valor, Source: AmountFromPayment}
		}
	}
	return AmountResolution{Value: r.Valor, Source: AmountFromReceipt}
}

// InstallmentSource names where the installment list was taken from.
type InstallmentSource string

const (
	InstallmentsFromReceipt InstallmentSource = "receipt"
	InstallmentsFromPayment InstallmentSource = "payment"
	InstallmentsNone        InstallmentSource = "none"
)

// InstallmentResolution is the installment list shown on the receipt.
type InstallmentResolution struct {
	Items  []Installment     `json:"items"`
	Source InstallmentSource `json:"source"`
}

// Parcelado reports whether the receipt documents an installment plan.
func (r InstallmentResolution) Parcelado() bool {
	return len(r.Items) > 0
}

// Sum adds the installment amounts. It is informative only; the printed
// total always comes from ResolveAmount.
func (r InstallmentResolution) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Valor)
	}
	return total
}

// ResolveInstallments prefers the receipt's own list over the payment's, and
// returns a copy ordered by installment number.
func ResolveInstallments(r Receipt) InstallmentResolution {
	var (
		items  []Installment
		source = InstallmentsNone
	)
	switch {
	case len(r.Parcelas) > 0:
		items, source = r.Parcelas, InstallmentsFromReceipt
	case r.Pagamento != nil && len(r.Pagamento.Parcelas) > 0:
		items, source = r.Pagamento.Parcelas, InstallmentsFromPayment
	default:
		return InstallmentResolution{Source: source}
	}
	sorted := make([]Installment, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Numero < sorted[j].Numero })
	return InstallmentResolution{Items: sorted, Source: source}
}
