package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	instStore "github.com/MrJamesThe3rd/cuotas/internal/installment/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListInstallments loads installments in the given states together with the
// transaction and customer columns the notification views show.
func (s *Store) ListInstallments(ctx context.Context, filter duestatus.ListFilter) ([]duestatus.Item, error) {
	query := `SELECT ` + instStore.Columns + `,
			t.kind, t.description, t.installment_count,
			c.id, c.name, c.phone, c.email
		FROM installments i
		JOIN transactions t ON t.id = i.transaction_id
		JOIN customers c ON c.id = t.customer_id
		WHERE 1 = 1`

	var args []any

	argIdx := 1

	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, st := range filter.States {
			placeholders[i] = fmt.Sprintf("$%d", argIdx)

			args = append(args, string(st))
			argIdx++
		}

		query += " AND i.state IN (" + strings.Join(placeholders, ", ") + ")"
	}

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND c.id = $%d", argIdx)

		args = append(args, *filter.CustomerID)
		argIdx++
	}

	query += " ORDER BY i.due_date ASC, c.name ASC, i.sequence_number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("listing installments", err)
	}
	defer rows.Close()

	var items []duestatus.Item

	for rows.Next() {
		var it duestatus.Item

		inst, err := instStore.Scan(rows,
			&it.TransactionKind, &it.TransactionDescription, &it.InstallmentCount,
			&it.CustomerID, &it.CustomerName, &it.CustomerPhone, &it.CustomerEmail,
		)
		if err != nil {
			return nil, apperr.Store("scanning installment", err)
		}

		it.Installment = inst
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterating installments", err)
	}

	return items, nil
}

var _ duestatus.Repository = (*Store)(nil)
