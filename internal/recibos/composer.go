package recibos

import (
	"time"

	"github.com/atende-erp/atende/internal/extenso"
)

const (
	marginX        = 20.0
	cornerInset    = 15.0
	headerTop      = 15.0
	continuationY  = 20.0
	bottomReserve  = 50.0
	footerFromEdge = 20.0
	signatureHalf  = 50.0
)

// Installment table columns.
var tableColumns = [...]float64{20, 70, 120, 170}

// DefaultCity is printed in the locality line when the issuer has no city.
const DefaultCity = "Porto Alegre"

// Composer turns receipts into layout instructions. It performs no I/O.
type Composer struct {
	Page        PageSize
	Wrapper     Wrapper
	Location    *time.Location
	DefaultCity string
	Now         func() time.Time
}

// NewComposer returns a Composer for A4 pages using the given wrapper and
// time zone. A nil location means UTC.
func NewComposer(wrapper Wrapper, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{
		Page:        A4,
		Wrapper:     wrapper,
		Location:    loc,
		DefaultCity: DefaultCity,
		Now:         time.Now,
	}
}

// Compose selects the layout from the receipt type.
func (c *Composer) Compose(r Receipt) Document {
	if r.IsDonation() {
		return c.ComposeDonation(r)
	}
	return c.ComposeReceipt(r)
}

// ComposeReceipt lays out the standard service receipt.
func (c *Composer) ComposeReceipt(r Receipt) Document {
	b := newBuilder(c.page(), c.Wrapper)
	w := b.page.Width
	created := c.local(r.CreatedAt)

	y := c.header(b, r.Empresa)
	c.title(b, y, "RECIBO", r.Numero, created)
	y += 20

	y += 15
	b.setFont(14, StyleBold)
	b.text(marginX, y, "DADOS DO PAGADOR:", AlignLeft)
	y += 10
	b.setFont(10, StyleNormal)
	b.text(marginX, y, "Nome: "+r.Cliente.Nome, AlignLeft)
	y += 5
	for _, field := range []struct{ label, value string }{
		{"CPF", r.Cliente.CPF},
		{"Endereço", r.Cliente.Endereco},
		{"Telefone", r.Cliente.Telefone},
	} {
		if field.value == "" {
			continue
		}
		b.text(marginX, y, field.label+": "+field.value, AlignLeft)
		y += 5
	}

	y += 10
	b.line(marginX, y, w-marginX, y)

	amount := ResolveAmount(r)
	installments := ResolveInstallments(r)
	valor := formatBRL(amount.Value)
	porExtenso := extenso.Reais(amount.Value)

	y += 15
	b.setFont(12, StyleNormal)
	sentence := "Recebemos de " + r.Cliente.Nome + cpfClause(r.Cliente) + ", o valor "
	if installments.Parcelado() {
		sentence += "total de R$ " + valor + " (" + porExtenso + "), em " + c.paymentDate(r, created) +
			", referente aos serviços prestados, conforme parcelamento detalhado abaixo."
	} else {
		sentence += "de R$ " + valor + " (" + porExtenso + "), em " + c.paymentDate(r, created) +
			", referente aos serviços prestados."
	}
	y += float64(b.block(marginX, y, w-2*marginX, sentence, 6)) * 6

	if r.Descricao != "" {
		y += 10
		b.setFont(11, StyleBold)
		b.text(marginX, y, "DESCRIÇÃO DOS SERVIÇOS:", AlignLeft)
		y += 6
		b.setFont(10, StyleNormal)
		y += float64(b.block(marginX, y, w-2*marginX, r.Descricao, 5)) * 5
	}

	y += 20
	b.setFont(11, StyleNormal)
	b.text(marginX, y, c.city(r.Empresa)+", "+formatLongDateTime(created)+".", AlignLeft)

	if r.PagamentoID != "" {
		y = c.paymentSection(b, y, r.PagamentoID, amount, installments, porExtenso)
	}

	y = c.notes(b, y, r.Observacoes)
	c.signature(b, y, "Assinatura do Emissor")
	c.footer(b, "Recibo gerado em "+formatDateTime(c.now()))

	return Document{
		Filename:     "recibo-" + r.Numero + ".pdf",
		Variant:      VariantNormal,
		Page:         b.page,
		Amount:       amount,
		Installments: installments,
		Instructions: b.instructions(),
	}
}

func (c *Composer) paymentSection(b *builder, y float64, pagamentoID string, amount AmountResolution, installments InstallmentResolution, porExtenso string) float64 {
	w, h := b.page.Width, b.page.Height
	valor := formatBRL(amount.Value)

	y += 15
	b.setFont(12, StyleBold)
	b.text(marginX, y, "INFORMAÇÕES DO PAGAMENTO:", AlignLeft)
	y += 8
	b.setFont(10, StyleNormal)
	b.text(marginX, y, "Referente ao Pagamento #"+pagamentoID, AlignLeft)
	y += 5

	if !installments.Parcelado() {
		y += 15
		b.setFont(12, StyleBold)
		b.text(marginX, y, "FORMA DE PAGAMENTO:", AlignLeft)
		y += 8
		b.setFont(10, StyleNormal)
		b.text(marginX, y, "Pagamento à vista - valor integral recebido.", AlignLeft)
		return y
	}

	items := installments.Items
	total := itoa(len(items))

	y += 15
	b.setFont(14, StyleBold)
	b.text(marginX, y, "DETALHAMENTO DO PARCELAMENTO:", AlignLeft)
	y += 10
	b.setFont(12, StyleBold)
	b.text(marginX, y, "VALOR TOTAL DO PAGAMENTO: R$ "+valor, AlignLeft)
	y += 8
	b.setFont(10, StyleNormal)
	b.text(marginX, y, "Parcelado em "+total+" vezes:", AlignLeft)
	y += 10

	b.setFont(9, StyleBold)
	for i, heading := range [...]string{"Parcela", "Valor", "Vencimento", "Status"} {
		b.text(tableColumns[i], y, heading, AlignLeft)
	}
	y += 3
	b.lineWidth(0.3)
	b.line(marginX, y, w-marginX, y)
	y += 5

	b.setFont(9, StyleNormal)
	for i, item := range items {
		status := "Pendente"
		if item.Paid() {
			status = "Pago"
		}
		b.text(tableColumns[0], y, itoa(item.Numero)+"/"+total, AlignLeft)
		b.text(tableColumns[1], y, "R$ "+formatBRL(item.Valor), AlignLeft)
		b.text(tableColumns[2], y, formatDate(item.Vencimento.Time), AlignLeft)
		b.text(tableColumns[3], y, status, AlignLeft)
		y += 5
		if y > h-bottomReserve && i < len(items)-1 {
			b.pageBreak()
			y = continuationY
		}
	}

	y += 10
	y += 5
	b.lineWidth(0.3)
	b.line(marginX, y, w-marginX, y)
	y += 10

	b.setFont(11, StyleBold)
	b.text(marginX, y, "VALOR TOTAL GERAL: R$ "+valor, AlignLeft)
	y += 5
	b.text(marginX, y, "POR EXTENSO: "+porExtenso, AlignLeft)
	y += 8

	b.setFont(9, StyleItalic)
	b.text(marginX, y, "Este recibo comprova o recebimento do valor total conforme detalhamento das parcelas acima.", AlignLeft)
	return y
}

// header draws the issuer block and the double rule, returning the next y.
// A logo URL only reserves space; nothing is drawn for it.
func (c *Composer) header(b *builder, company Company) float64 {
	w := b.page.Width
	y := headerTop

	b.setFont(16, StyleBold)
	b.text(w/2, y, company.Nome, AlignCenter)
	y += 8

	b.setFont(9, StyleNormal)
	if line := companyDataLine(company); line != "" {
		b.text(w/2, y, line, AlignCenter)
		y += 6
	}
	if line := companyAddressLine(company); line != "" {
		b.text(w/2, y, line, AlignCenter)
		y += 8
	}

	y += 5
	b.lineWidth(1)
	b.line(marginX, y, w-marginX, y)
	y += 2
	b.lineWidth(0.3)
	b.line(marginX, y, w-marginX, y)
	return y + 15
}

// title draws the centered title plus the number and date in the top-right corner.
func (c *Composer) title(b *builder, y float64, title, numero string, created time.Time) {
	w := b.page.Width
	b.setFont(20, StyleBold)
	b.text(w/2, y, title, AlignCenter)
	b.setFont(11, StyleNormal)
	b.text(w-cornerInset, 20, "Nº "+numero, AlignRight)
	b.text(w-cornerInset, 30, "Data: "+formatDate(created), AlignRight)
}

func (c *Composer) notes(b *builder, y float64, observacoes string) float64 {
	if observacoes == "" {
		return y
	}
	y += 15
	b.setFont(12, StyleBold)
	b.text(marginX, y, "OBSERVAÇÕES:", AlignLeft)
	y += 8
	b.setFont(10, StyleNormal)
	return y + float64(b.block(marginX, y, b.page.Width-2*marginX, observacoes, 5))*5
}

func (c *Composer) signature(b *builder, y float64, caption string) {
	w := b.page.Width
	y += 30
	b.lineWidth(0.5)
	b.line(w/2-signatureHalf, y, w/2+signatureHalf, y)
	y += 8
	b.setFont(10, StyleNormal)
	b.text(w/2, y, caption, AlignCenter)
}

func (c *Composer) footer(b *builder, text string) {
	b.setFont(8, StyleNormal)
	b.text(b.page.Width/2, b.page.Height-footerFromEdge, text, AlignCenter)
}

// paymentDate is the payment date in long form, or the creation date when
// the receipt has no payment date.
func (c *Composer) paymentDate(r Receipt, created time.Time) string {
	if r.Pagamento != nil && r.Pagamento.DataPagamento != nil && !r.Pagamento.DataPagamento.IsZero() {
		return formatLongDate(r.Pagamento.DataPagamento.Time)
	}
	return formatLongDate(created)
}

func (c *Composer) city(company Company) string {
	if company.Cidade != "" {
		return company.Cidade
	}
	if c.DefaultCity != "" {
		return c.DefaultCity
	}
	return DefaultCity
}

func (c *Composer) page() PageSize {
	if c.Page.Width <= 0 || c.Page.Height <= 0 {
		return A4
	}
	return c.Page
}

func (c *Composer) local(t time.Time) time.Time {
	if c.Location == nil {
		return t
	}
	return t.In(c.Location)
}

func (c *Composer) now() time.Time {
	if c.Now == nil {
		return c.local(time.Now())
	}
	return c.local(c.Now())
}

func cpfClause(client Client) string {
	if client.CPF == "" {
		return ""
	}
	return ", CPF nº " + client.CPF
}
