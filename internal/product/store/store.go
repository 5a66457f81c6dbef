package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/product"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectProductColumns = `id, name, description, unit_price, created_at, updated_at`

func scanProduct(s scanner) (*product.Product, error) {
	var p product.Product

	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (name, description, unit_price, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, p.Name, p.Description, p.UnitPrice).Scan(&p.ID, &p.CreatedAt); err != nil {
		return apperr.Store("creating product", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("product")
		}

		return nil, apperr.Store("getting product", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products ORDER BY lower(name) ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Store("listing products", err)
	}
	defer rows.Close()

	var ps []*product.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, apperr.Store("scanning product", err)
		}

		ps = append(ps, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperr.Store("iterating products", err)
	}

	return ps, nil
}

var _ product.Repository = (*Store)(nil)
