package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/database"
	instStore "github.com/MrJamesThe3rd/cuotas/internal/installment/store"
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanTransaction reads a transaction row. Expected column order matches
// selectTransactionColumns.
func scanTransaction(s instStore.Scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var kindStr, statusStr, freqStr string

	if err := s.Scan(
		&tx.ID, &tx.CustomerID, &tx.ProductID, &kindStr, &statusStr, &tx.Description,
		&tx.Principal, &tx.InterestPercent, &tx.TotalAmount, &freqStr,
		&tx.InstallmentCount, &tx.InstallmentAmount, &tx.StartDate,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Kind = transaction.Kind(kindStr)
	tx.Status = transaction.Status(statusStr)
	tx.PaymentFrequency = schedule.Frequency(freqStr)

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.customer_id, t.product_id, t.kind, t.status, t.description,
	t.principal, t.interest_percent, t.total_amount, t.payment_frequency,
	t.installment_count, t.installment_amount, t.start_date,
	t.created_at, t.updated_at
`

// CreateTransaction inserts the transaction and every installment in
// tx.Installments in a single database transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store("beginning transaction", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO transactions (
			customer_id, product_id, kind, status, description,
			principal, interest_percent, total_amount, payment_frequency,
			installment_count, installment_amount, start_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		tx.CustomerID,
		tx.ProductID,
		tx.Kind,
		tx.Status,
		tx.Description,
		tx.Principal,
		tx.InterestPercent,
		tx.TotalAmount,
		tx.PaymentFrequency,
		tx.InstallmentCount,
		tx.InstallmentAmount,
		tx.StartDate,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound("customer or product")
		}

		return apperr.Store("creating transaction", err)
	}

	for _, inst := range tx.Installments {
		inst.TransactionID = tx.ID

		if err := instStore.Insert(ctx, dbTx, inst); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Store("committing transaction", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("transaction")
		}

		return nil, apperr.Store("getting transaction", err)
	}

	tx.Installments, err = instStore.ListByTransaction(ctx, s.db, tx.ID)
	if err != nil {
		return nil, err
	}

	return tx, nil
}

// ListByCustomer returns the customer's transactions, oldest first, with
// their installments loaded.
func (s *Store) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.customer_id = $1
		ORDER BY t.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, apperr.Store("listing transactions", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	byID := make(map[uuid.UUID]*transaction.Transaction)

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Store("scanning transaction", err)
		}

		txs = append(txs, tx)
		byID[tx.ID] = tx
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterating transactions", err)
	}

	if len(txs) == 0 {
		return txs, nil
	}

	instQuery := `SELECT ` + instStore.Columns + `
		FROM installments i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.customer_id = $1
		ORDER BY i.transaction_id, i.sequence_number ASC`

	instRows, err := s.db.QueryContext(ctx, instQuery, customerID)
	if err != nil {
		return nil, apperr.Store("listing installments", err)
	}
	defer instRows.Close()

	for instRows.Next() {
		inst, err := instStore.Scan(instRows)
		if err != nil {
			return nil, apperr.Store("scanning installment", err)
		}

		if tx, ok := byID[inst.TransactionID]; ok {
			tx.Installments = append(tx.Installments, inst)
		}
	}

	if err := instRows.Err(); err != nil {
		return nil, apperr.Store("iterating installments", err)
	}

	return txs, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status transaction.Status) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return apperr.Store("updating status", err)
	}

	return requireRow(res, "transaction")
}

// DeleteTransaction removes the transaction; installments go with it through
// ON DELETE CASCADE.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return apperr.Store("deleting transaction", err)
	}

	return requireRow(res, "transaction")
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("reading affected rows", err)
	}

	if n == 0 {
		return apperr.NotFound(what)
	}

	return nil
}

func (s *Store) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.Store("checking customer", err)
	}

	return exists, nil
}

func (s *Store) ProductPrice(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var price decimal.Decimal

	err := s.db.QueryRowContext(ctx, `SELECT unit_price FROM products WHERE id = $1`, id).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, apperr.NotFound("product")
		}

		return decimal.Zero, apperr.Store("getting product price", err)
	}

	return price, nil
}

var (
	_ transaction.Repository = (*Store)(nil)
	_ transaction.Catalog    = (*Store)(nil)
)
