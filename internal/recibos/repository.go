package recibos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atende-erp/atende/internal/platform/db"
)

// PgRepository reads receipts, their payment and installments from Postgres.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository wrapper.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// invalidTextRepresentation is raised when the id is not a valid uuid.
const invalidTextRepresentation = "22P02"

const receiptQuery = `SELECT id::text, numero_recibo, COALESCE(tipo, ''), valor,
       COALESCE(descricao, ''), COALESCE(observacoes, ''),
       dados_empresa, dados_cliente, created_at, COALESCE(pagamento_id::text, '')
FROM recibos WHERE id = $1`

const paymentQuery = `SELECT data_pagamento, valor, valor_original
FROM pagamentos WHERE id = $1`

const installmentsByReceiptQuery = `SELECT numero_parcela, valor_parcela, data_vencimento, COALESCE(status, '')
FROM parcelas WHERE recibo_id = $1
ORDER BY numero_parcela`

const installmentsByPaymentQuery = `SELECT numero_parcela, valor_parcela, data_vencimento, COALESCE(status, '')
FROM parcelas WHERE pagamento_id = $1
ORDER BY numero_parcela`

// Get loads a receipt by id with its payment and installments in one snapshot.
func (r *PgRepository) Get(ctx context.Context, id string) (*Receipt, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("recibos: repository not initialised")
	}
	var receipt *Receipt
	err := db.WithReadTx(ctx, r.pool, func(tx pgx.Tx) error {
		loaded, err := scanReceipt(tx.QueryRow(ctx, receiptQuery, id))
		if err != nil {
			return err
		}
		if loaded.Parcelas, err = queryInstallments(ctx, tx, installmentsByReceiptQuery, loaded.ID); err != nil {
			return err
		}
		if loaded.PagamentoID != "" {
			payment, err := scanPayment(tx.QueryRow(ctx, paymentQuery, loaded.PagamentoID))
			switch {
			case errors.Is(err, pgx.ErrNoRows):
			case err != nil:
				return err
			default:
				if payment.Parcelas, err = queryInstallments(ctx, tx, installmentsByPaymentQuery, loaded.PagamentoID); err != nil {
					return err
				}
				loaded.Pagamento = payment
			}
		}
		receipt = loaded
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("recibos: get %s: %w", id, err)
	}
	return receipt, nil
}

func scanReceipt(row pgx.Row) (*Receipt, error) {
	var (
		r       Receipt
		tipo    string
		valor   pgtype.Numeric
		empresa []byte
		cliente []byte
	)
	if err := row.Scan(&r.ID, &r.Numero, &tipo, &valor, &r.Descricao, &r.Observacoes, &empresa, &cliente, &r.CreatedAt, &r.PagamentoID); err != nil {
		return nil, err
	}
	r.Tipo = Variant(tipo)
	r.Valor, _ = numericToDecimal(valor)
	if len(empresa) > 0 {
		if err := json.Unmarshal(empresa, &r.Empresa); err != nil {
			return nil, fmt.Errorf("decode dados_empresa: %w", err)
		}
	}
	if len(cliente) > 0 {
		if err := json.Unmarshal(cliente, &r.Cliente); err != nil {
			return nil, fmt.Errorf("decode dados_cliente: %w", err)
		}
	}
	return &r, nil
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var (
		paidAt   pgtype.Date
		valor    pgtype.Numeric
		original pgtype.Numeric
	)
	if err := row.Scan(&paidAt, &valor, &original); err != nil {
		return nil, err
	}
	p := &Payment{}
	if paidAt.Valid && paidAt.InfinityModifier == pgtype.Finite {
		d := Date{Time: paidAt.Time}
		p.DataPagamento = &d
	}
	if v, ok := numericToDecimal(valor); ok {
		p.Valor = &v
	}
	if v, ok := numericToDecimal(original); ok {
		p.ValorOriginal = &v
	}
	return p, nil
}

func queryInstallments(ctx context.Context, tx pgx.Tx, query, id string) ([]Installment, error) {
	rows, err := tx.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Installment
	for rows.Next() {
		var (
			item  Installment
			valor pgtype.Numeric
			due   pgtype.Date
		)
		if err := rows.Scan(&item.Numero, &valor, &due, &item.Status); err != nil {
			return nil, err
		}
		item.Valor, _ = numericToDecimal(valor)
		if due.Valid {
			item.Vencimento = Date{Time: due.Time}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// numericToDecimal converts a finite Postgres numeric. NULL, NaN and
// infinities report false.
func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, bool) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), true
}
