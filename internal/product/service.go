package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}

	if !params.UnitPrice.IsPositive() {
		return nil, apperr.Validation("unit_price", "must be greater than zero")
	}

	p := &Product{
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		UnitPrice:   params.UnitPrice,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.ListProducts(ctx)
}
