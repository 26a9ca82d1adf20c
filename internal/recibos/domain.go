package recibos

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the receipt does not exist.
	ErrNotFound = errors.New("recibos: receipt not found")
	// ErrInvalidReceipt indicates the receipt cannot be composed.
	ErrInvalidReceipt = errors.New("recibos: invalid receipt")
)

// Variant selects the receipt layout.
type Variant string

const (
	// VariantNormal is the standard service receipt.
	VariantNormal Variant = "normal"
	// VariantDoacao is the donation receipt.
	VariantDoacao Variant = "doacao"
)

// Person types of the issuer; they decide between the CPF and CNPJ labels.
const (
	PessoaFisica   = "fisica"
	PessoaJuridica = "juridica"
)

// InstallmentPaid is the installment status rendered as "Pago".
const InstallmentPaid = "pago"

// Company is the issuer profile snapshotted on the receipt.
type Company struct {
	Nome       string `json:"nome"`
	TipoPessoa string `json:"tipo_pessoa,omitempty"`
	CpfCnpj    string `json:"cpf_cnpj,omitempty"`
	Telefone   string `json:"telefone,omitempty"`
	Email      string `json:"email,omitempty"`
	Endereco   string `json:"endereco,omitempty"`
	Cidade     string `json:"cidade,omitempty"`
	Estado     string `json:"estado,omitempty"`
	CEP        string `json:"cep,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
}

// Client is the payer (or donor) profile snapshotted on the receipt.
type Client struct {
	Nome     string `json:"nome"`
	CPF      string `json:"cpf,omitempty"`
	Endereco string `json:"endereco,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

// Date is a calendar date. It is formatted as stored, without time zone
// conversion, so "2025-03-10" is always printed as 10/03/2025.
type Date struct {
	time.Time
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON accepts "2006-01-02" and RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("recibos: parse date %q: %w", raw, err)
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the date as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// Installment is one scheduled portion of a payment.
type Installment struct {
	Numero     int             `json:"numero_parcela"`
	Valor      decimal.Decimal `json:"valor_parcela"`
	Vencimento Date            `json:"data_vencimento"`
	Status     string          `json:"status"`
}

// Paid reports whether the installment was settled.
func (i Installment) Paid() bool {
	return i.Status == InstallmentPaid
}

// Payment is the payment record linked to a receipt.
type Payment struct {
	DataPagamento *Date            `json:"data_pagamento,omitempty"`
	Valor         *decimal.Decimal `json:"valor,omitempty"`
	ValorOriginal *decimal.Decimal `json:"valor_original,omitempty"`
	Parcelas      []Installment    `json:"parcelas,omitempty"`
}

// Receipt is the document the composer turns into layout instructions.
// Empty strings mean the field is absent.
type Receipt struct {
	ID          string          `json:"id"`
	Numero      string          `json:"numero_recibo"`
	Tipo        Variant         `json:"tipo,omitempty"`
	Valor       decimal.Decimal `json:"valor"`
	Descricao   string          `json:"descricao,omitempty"`
	Observacoes string          `json:"observacoes,omitempty"`
	Empresa     Company         `json:"dados_empresa"`
	Cliente     Client          `json:"dados_cliente"`
	CreatedAt   time.Time       `json:"created_at"`
	PagamentoID string          `json:"pagamento_id,omitempty"`
	Parcelas    []Installment   `json:"parcelas,omitempty"`
	Pagamento   *Payment        `json:"pagamentos,omitempty"`
}

// Validate checks the fields every layout needs.
func (r Receipt) Validate() error {
	switch {
	case strings.TrimSpace(r.Numero) == "":
		return fmt.Errorf("%w: numero_recibo required", ErrInvalidReceipt)
	case strings.TrimSpace(r.Empresa.Nome) == "":
		return fmt.Errorf("%w: company name required", ErrInvalidReceipt)
	case strings.TrimSpace(r.Cliente.Nome) == "":
		return fmt.Errorf("%w: client name required", ErrInvalidReceipt)
	case r.CreatedAt.IsZero():
		return fmt.Errorf("%w: created_at required", ErrInvalidReceipt)
	}
	return nil
}

// IsDonation reports whether the receipt uses the donation layout.
func (r Receipt) IsDonation() bool {
	return r.Tipo == VariantDoacao
}
