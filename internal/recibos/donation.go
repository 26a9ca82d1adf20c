package recibos

import "github.com/atende-erp/atende/internal/extenso"

// ComposeDonation lays out the donation receipt. It always uses the receipt's
// own amount and never prints payment or installment details.
func (c *Composer) ComposeDonation(r Receipt) Document {
	b := newBuilder(c.page(), c.Wrapper)
	w := b.page.Width
	created := c.local(r.CreatedAt)
	valor := formatBRL(r.Valor)

	y := c.header(b, r.Empresa)
	c.title(b, y, "RECIBO DE DOAÇÃO", r.Numero, created)
	y += 20

	y += 15
	b.setFont(14, StyleBold)
	b.text(marginX, y, "DADOS DO DOADOR:", AlignLeft)
	y += 10
	b.setFont(10, StyleNormal)
	b.text(marginX, y, "Nome: "+r.Cliente.Nome, AlignLeft)
	y += 5
	if r.Cliente.CPF != "" {
		b.text(marginX, y, "CPF: "+r.Cliente.CPF, AlignLeft)
		y += 5
	}

	y += 20
	b.setFont(12, StyleNormal)
	declaracao := "Declaramos que recebemos do doador acima identificado a quantia de R$ " + valor +
		" (" + extenso.Reais(r.Valor) + ") referente à doação em dinheiro para apoio às atividades da organização."
	y += float64(b.block(marginX, y, w-2*marginX, declaracao, 6)) * 6

	if r.Descricao != "" {
		y += 15
		b.setFont(12, StyleBold)
		b.text(marginX, y, "FINALIDADE DA DOAÇÃO:", AlignLeft)
		y += 8
		b.setFont(10, StyleNormal)
		y += float64(b.block(marginX, y, w-2*marginX, r.Descricao, 5)) * 5
	}

	y += 20
	b.setFont(16, StyleBold)
	b.text(marginX, y, "VALOR DA DOAÇÃO: R$ "+valor, AlignLeft)

	y = c.notes(b, y, r.Observacoes)

	y += 20
	b.setFont(12, StyleItalic)
	b.text(w/2, y, "Agradecemos pela sua generosidade e apoio às nossas atividades!", AlignCenter)

	c.signature(b, y, "Assinatura do Responsável")
	c.footer(b, "Recibo de doação gerado em "+formatDateTime(c.now()))

	return Document{
		Filename:     "recibo-doacao-" + r.Numero + ".pdf",
		Variant:      VariantDoacao,
		Page:         b.page,
		Amount:       AmountResolution{Value: r.Valor, Source: AmountFromReceipt},
		Installments: InstallmentResolution{Source: InstallmentsNone},
		Instructions: b.instructions(),
	}
}
