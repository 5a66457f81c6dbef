package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scanner is satisfied by both *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns lists the installment columns in the order Scan expects, for a
// table aliased as "i".
const Columns = `
	i.id, i.transaction_id, i.sequence_number, i.due_date, i.scheduled_amount, i.amount_paid,
	i.paid_date, i.state, i.late_fee_amount, i.rescheduled_at, i.reschedule_reason,
	i.last_payment_date, i.payment_method, i.payment_notes, i.receipt_number,
	i.version, i.created_at, i.updated_at
`

// Scan reads the Columns of one row. Extra destinations are scanned after
// them, for queries that join other tables.
func Scan(s Scanner, extra ...any) (*installment.Installment, error) {
	var inst installment.Installment

	var stateStr, methodStr string

	dest := []any{
		&inst.ID, &inst.TransactionID, &inst.SequenceNumber, &inst.DueDate, &inst.ScheduledAmount, &inst.AmountPaid,
		&inst.PaidDate, &stateStr, &inst.LateFeeAmount, &inst.RescheduledAt, &inst.RescheduleReason,
		&inst.LastPaymentDate, &methodStr, &inst.PaymentNotes, &inst.ReceiptNumber,
		&inst.Version, &inst.CreatedAt, &inst.UpdatedAt,
	}

	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	inst.State = installment.State(stateStr)
	inst.PaymentMethod = installment.Method(methodStr)

	return &inst, nil
}

// Insert stores a freshly generated installment and fills in its id,
// version and creation time.
func Insert(ctx context.Context, q Querier, inst *installment.Installment) error {
	query := `
		INSERT INTO installments (transaction_id, sequence_number, due_date, scheduled_amount, amount_paid, state, late_fee_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, version, created_at
	`

	err := q.QueryRowContext(ctx, query,
		inst.TransactionID,
		inst.SequenceNumber,
		inst.DueDate,
		inst.ScheduledAmount,
		inst.AmountPaid,
		inst.State,
		inst.LateFeeAmount,
	).Scan(&inst.ID, &inst.Version, &inst.CreatedAt)
	if err != nil {
		return apperr.Store("creating installment", err)
	}

	return nil
}

// ListByTransaction returns a transaction's installments in sequence order.
func ListByTransaction(ctx context.Context, q Querier, transactionID uuid.UUID) ([]*installment.Installment, error) {
	query := `SELECT ` + Columns + `
		FROM installments i
		WHERE i.transaction_id = $1
		ORDER BY i.sequence_number ASC`

	rows, err := q.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, apperr.Store("listing installments", err)
	}
	defer rows.Close()

	var insts []*installment.Installment

	for rows.Next() {
		inst, err := Scan(rows)
		if err != nil {
			return nil, apperr.Store("scanning installment", err)
		}

		insts = append(insts, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterating installments", err)
	}

	return insts, nil
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetInstallment(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	query := `SELECT ` + Columns + ` FROM installments i WHERE i.id = $1`

	inst, err := Scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("installment")
		}

		return nil, apperr.Store("getting installment", err)
	}

	return inst, nil
}

func (s *Store) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*installment.Installment, error) {
	return ListByTransaction(ctx, s.db, transactionID)
}

// UpdateInstallment writes the mutable fields of inst only while the row is
// still at expectedVersion. A stale version yields apperr.ErrConflict.
func (s *Store) UpdateInstallment(ctx context.Context, inst *installment.Installment, expectedVersion int) error {
	query := `
		UPDATE installments
		SET due_date = $1, scheduled_amount = $2, amount_paid = $3, paid_date = $4, state = $5,
			late_fee_amount = $6, rescheduled_at = $7, reschedule_reason = $8,
			last_payment_date = $9, payment_method = $10, payment_notes = $11, receipt_number = $12,
			version = version + 1, updated_at = NOW()
		WHERE id = $13 AND version = $14
		RETURNING version, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inst.DueDate,
		inst.ScheduledAmount,
		inst.AmountPaid,
		inst.PaidDate,
		inst.State,
		inst.LateFeeAmount,
		inst.RescheduledAt,
		inst.RescheduleReason,
		inst.LastPaymentDate,
		inst.PaymentMethod,
		inst.PaymentNotes,
		inst.ReceiptNumber,
		inst.ID,
		expectedVersion,
	).Scan(&inst.Version, &inst.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return apperr.Store("updating installment", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM installments WHERE id = $1)`, inst.ID).Scan(&exists); err != nil {
		return apperr.Store("checking installment", err)
	}

	if !exists {
		return apperr.NotFound("installment")
	}

	return apperr.Conflict("installment was modified concurrently, reload and retry")
}

var _ installment.Repository = (*Store)(nil)
