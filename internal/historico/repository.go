package historico

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Source is the tabular capability the loader reads from.
type Source interface {
	List(ctx context.Context, filters Filters) ([]Record, error)
	Lookup
}

// Lookup resolves ids of one relation to display names. Ids without a row
// are absent from the result.
type Lookup interface {
	Names(ctx context.Context, relation Relation, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Repository reads the history from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository wrapper.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns history records, most recent first.
func (r *Repository) List(ctx context.Context, filters Filters) ([]Record, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("historico: repository not initialised")
	}
	query, args := listQuery(filters)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("historico: list: %w", err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			rec                                 Record
			id, cliente, consultor, servico, fp pgtype.UUID
			valor                               pgtype.Numeric
		)
		if err := rows.Scan(&id, &cliente, &consultor, &servico, &fp, &rec.DataAtendimento, &valor, &rec.Observacoes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("historico: scan: %w", err)
		}
		rec.ID = uuid.UUID(id.Bytes)
		rec.ClienteID = uuid.UUID(cliente.Bytes)
		rec.ConsultorID = uuid.UUID(consultor.Bytes)
		rec.ServicoID = uuid.UUID(servico.Bytes)
		if fp.Valid {
			ref := uuid.UUID(fp.Bytes)
			rec.FormaPagamento = &ref
		}
		if valor.Valid && !valor.NaN && valor.InfinityModifier == pgtype.Finite && valor.Int != nil {
			v := decimal.NewFromBigInt(valor.Int, valor.Exp)
			rec.Valor = &v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("historico: list: %w", err)
	}
	return out, nil
}

func listQuery(filters Filters) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filters.ClienteID != nil {
		args = append(args, pgUUID(*filters.ClienteID))
		where = append(where, "cliente_id = $"+strconv.Itoa(len(args)))
	}
	if filters.ConsultorID != nil {
		args = append(args, pgUUID(*filters.ConsultorID))
		where = append(where, "consultor_id = $"+strconv.Itoa(len(args)))
	}
	query := `SELECT id, cliente_id, consultor_id, servico_id, forma_pagamento,
       data_atendimento, valor, observacoes, created_at
FROM historico`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY data_atendimento DESC"
	return query, args
}

// Names resolves ids of the relation in a single query.
func (r *Repository) Names(ctx context.Context, relation Relation, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("historico: repository not initialised")
	}
	if !relation.Valid() {
		return nil, fmt.Errorf("historico: unknown relation %q", relation)
	}
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	params := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		params[i] = pgUUID(id)
	}
	// relation is checked against the fixed allow-list above.
	query := "SELECT id, nome FROM " + string(relation) + " WHERE id = ANY($1::uuid[])"
	rows, err := r.pool.Query(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("historico: names %s: %w", relation, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id   pgtype.UUID
			nome string
		)
		if err := rows.Scan(&id, &nome); err != nil {
			return nil, fmt.Errorf("historico: names %s: %w", relation, err)
		}
		out[uuid.UUID(id.Bytes)] = nome
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("historico: names %s: %w", relation, err)
	}
	return out, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
