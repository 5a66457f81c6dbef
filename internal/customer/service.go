package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customer
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	CreateCustomers(ctx context.Context, cs []*Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	CountTransactions(ctx context.Context, id uuid.UUID) (int, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

type CreateParams struct {
	Name       string
	DocumentID string
	Phone      string
	Email      string
	Address    string
	Notes      string
}

type ListFilter struct {
	// Search matches name, document or phone, case-insensitively.
	Search string
}

func (s *Service) normalize(p CreateParams) (CreateParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.DocumentID = strings.TrimSpace(p.DocumentID)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.TrimSpace(p.Email)
	p.Address = strings.TrimSpace(p.Address)
	p.Notes = strings.TrimSpace(p.Notes)

	if p.Name == "" {
		return p, apperr.Validation("name", "is required")
	}

	if err := s.validate.Var(p.Email, "omitempty,email"); err != nil {
		return p, apperr.Validation("email", "is not a valid address")
	}

	return p, nil
}

func (p CreateParams) toCustomer() *Customer {
	return &Customer{
		Name:       p.Name,
		DocumentID: p.DocumentID,
		Phone:      p.Phone,
		Email:      p.Email,
		Address:    p.Address,
		Notes:      p.Notes,
	}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	params, err := s.normalize(params)
	if err != nil {
		return nil, err
	}

	c := params.toCustomer()
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// CreateBatch validates every row before inserting any of them.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Customer, error) {
	if len(params) == 0 {
		return nil, nil
	}

	cs := make([]*Customer, len(params))

	for i, p := range params {
		p, err := s.normalize(p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		cs[i] = p.toCustomer()
	}

	if err := s.repo.CreateCustomers(ctx, cs); err != nil {
		return nil, err
	}

	return cs, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params CreateParams) (*Customer, error) {
	params, err := s.normalize(params)
	if err != nil {
		return nil, err
	}

	c := params.toCustomer()
	c.ID = id

	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete refuses to remove a customer that owns transactions.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountTransactions(ctx, id)
	if err != nil {
		return fmt.Errorf("counting transactions: %w", err)
	}

	if n > 0 {
		return apperr.Conflict(fmt.Sprintf("customer owns %d transaction(s)", n))
	}

	return s.repo.DeleteCustomer(ctx, id)
}
