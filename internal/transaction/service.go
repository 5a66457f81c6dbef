package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	// CreateTransaction inserts tx together with tx.Installments atomically.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// DeleteTransaction removes the transaction and all of its installments.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// Catalog answers the lookups a new transaction depends on.
type Catalog interface {
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
	ProductPrice(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

type CreateParams struct {
	CustomerID  uuid.UUID
	ProductID   *uuid.UUID
	Kind        Kind
	Description string
	// Principal defaults to the product's unit price for sales when zero.
	Principal        decimal.Decimal
	InterestPercent  decimal.Decimal
	Frequency        schedule.Frequency
	InstallmentCount int
	StartDate        time.Time
}

// Create records a sale or loan together with its generated installments.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if !params.Kind.Valid() {
		return nil, apperr.Validation("kind", "must be sale or loan")
	}

	if params.CustomerID == uuid.Nil {
		return nil, apperr.Validation("customer_id", "is required")
	}

	switch params.Kind {
	case KindSale:
		if params.ProductID == nil {
			return nil, apperr.Validation("product_id", "is required for a sale")
		}
	case KindLoan:
		if params.ProductID != nil {
			return nil, apperr.Validation("product_id", "a loan has no product")
		}
	}

	exists, err := s.catalog.CustomerExists(ctx, params.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("checking customer: %w", err)
	}

	if !exists {
		return nil, apperr.NotFound("customer")
	}

	principal := params.Principal

	if params.ProductID != nil {
		price, err := s.catalog.ProductPrice(ctx, *params.ProductID)
		if err != nil {
			return nil, fmt.Errorf("checking product: %w", err)
		}

		if principal.IsZero() {
			principal = price
		}
	}

	plan, err := schedule.Generate(schedule.Terms{
		Principal:        principal,
		InterestPercent:  params.InterestPercent,
		InstallmentCount: params.InstallmentCount,
		Frequency:        params.Frequency,
		StartDate:        params.StartDate,
	})
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		CustomerID:        params.CustomerID,
		ProductID:         params.ProductID,
		Kind:              params.Kind,
		Status:            StatusActive,
		Description:       strings.TrimSpace(params.Description),
		Principal:         principal,
		InterestPercent:   params.InterestPercent,
		TotalAmount:       plan.TotalAmount,
		PaymentFrequency:  params.Frequency,
		InstallmentCount:  params.InstallmentCount,
		InstallmentAmount: plan.InstallmentAmount,
		StartDate:         plan.Installments[0].DueDate,
		Installments:      plan.Installments,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Transaction, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return apperr.Validation("status", "must be active, completed or delinquent")
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// Delete removes a transaction and its installments. The caller must pass
// confirmed = true; anything else is rejected without touching the store.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return apperr.Validation("confirm", "deleting a transaction must be explicitly confirmed")
	}

	return s.repo.DeleteTransaction(ctx, id)
}
