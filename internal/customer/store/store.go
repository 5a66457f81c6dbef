package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectCustomerColumns = `id, name, document_id, phone, email, address, notes, created_at, updated_at`

func scanCustomer(s scanner) (*customer.Customer, error) {
	var c customer.Customer

	if err := s.Scan(
		&c.ID, &c.Name, &c.DocumentID, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &c, nil
}

const insertCustomer = `
	INSERT INTO customers (name, document_id, phone, email, address, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, created_at
`

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	err := s.db.QueryRowContext(ctx, insertCustomer,
		c.Name, c.DocumentID, c.Phone, c.Email, c.Address, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return apperr.Store("creating customer", err)
	}

	return nil
}

// CreateCustomers inserts all customers in one database transaction.
func (s *Store) CreateCustomers(ctx context.Context, cs []*customer.Customer) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store("beginning transaction", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, insertCustomer)
	if err != nil {
		return apperr.Store("preparing customer insert", err)
	}
	defer stmt.Close()

	for _, c := range cs {
		err := stmt.QueryRowContext(ctx,
			c.Name, c.DocumentID, c.Phone, c.Email, c.Address, c.Notes,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return apperr.Store("creating customer", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return apperr.Store("committing customers", err)
	}

	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("customer")
		}

		return nil, apperr.Store("getting customer", err)
	}

	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error) {
	query := `SELECT ` + selectCustomerColumns + ` FROM customers`

	var args []any

	if filter.Search != "" {
		query += ` WHERE name ILIKE $1 OR document_id ILIKE $1 OR phone ILIKE $1`

		args = append(args, "%"+filter.Search+"%")
	}

	query += ` ORDER BY lower(name) ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Store("listing customers", err)
	}
	defer rows.Close()

	var cs []*customer.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, apperr.Store("scanning customer", err)
		}

		cs = append(cs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterating customers", err)
	}

	return cs, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, document_id = $2, phone = $3, email = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.DocumentID, c.Phone, c.Email, c.Address, c.Notes, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("customer")
		}

		return apperr.Store("updating customer", err)
	}

	return nil
}

// DeleteCustomer relies on the RESTRICT foreign key from transactions when a
// transaction is added between the service's check and the delete.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Conflict("customer owns transactions")
		}

		return apperr.Store("deleting customer", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store("deleting customer", err)
	}

	if n == 0 {
		return apperr.NotFound("customer")
	}

	return nil
}

func (s *Store) CountTransactions(ctx context.Context, id uuid.UUID) (int, error) {
	var n int

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE customer_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, apperr.Store("counting transactions", err)
	}

	return n, nil
}

var _ customer.Repository = (*Store)(nil)
