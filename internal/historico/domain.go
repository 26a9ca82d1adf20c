// Package historico loads the service history and resolves the display names
// of the consultants, services, clients and payment methods it references.
package historico

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fallback names shown when a reference cannot be resolved.
const (
	FallbackNotFound    = "Não encontrado"
	FallbackNotInformed = "Não informado"
)

// ErrLoad indicates the history could not be loaded.
var ErrLoad = errors.New("historico: load failed")

// Record is one row of the service history as stored.
type Record struct {
	ID              uuid.UUID        `json:"id"`
	ClienteID       uuid.UUID        `json:"cliente_id"`
	ConsultorID     uuid.UUID        `json:"consultor_id"`
	ServicoID       uuid.UUID        `json:"servico_id"`
	FormaPagamento  *uuid.UUID       `json:"forma_pagamento,omitempty"`
	DataAtendimento time.Time        `json:"data_atendimento"`
	Valor           *decimal.Decimal `json:"valor,omitempty"`
	Observacoes     *string          `json:"observacoes,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Item is a Record with its references resolved to names.
type Item struct {
	Record
	ConsultorNome      string `json:"consultor_nome"`
	ServicoNome        string `json:"servico_nome"`
	ClienteNome        string `json:"cliente_nome"`
	FormaPagamentoNome string `json:"forma_pagamento_nome"`
}

// Filters narrows the history. Nil fields are not applied.
type Filters struct {
	ConsultorID *uuid.UUID
	ClienteID   *uuid.UUID
}

// Relation names a lookup table.
type Relation string

const (
	RelationConsultores     Relation = "consultores"
	RelationServicos        Relation = "servicos"
	RelationClientes        Relation = "clientes"
	RelationFormasPagamento Relation = "formas_pagamento"
)

// Relations lists every lookup table in resolution order.
var Relations = []Relation{RelationConsultores, RelationServicos, RelationClientes, RelationFormasPagamento}

// Valid reports whether r is a known lookup table.
func (r Relation) Valid() bool {
	for _, known := range Relations {
		if r == known {
			return true
		}
	}
	return false
}

// Variant is the presentation hint of a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a user-facing message raised by the loader.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// LoadFailure is the notification raised when the history cannot be loaded.
var LoadFailure = Notification{
	Title:       "Erro ao carregar histórico",
	Description: "Não foi possível carregar os dados do histórico.",
	Variant:     VariantDestructive,
}
