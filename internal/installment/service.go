package installment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=installment
type Repository interface {
	GetInstallment(ctx context.Context, id uuid.UUID) (*Installment, error)
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Installment, error)
	// UpdateInstallment persists inst only if the stored row still has
	// expectedVersion, and bumps inst.Version on success.
	UpdateInstallment(ctx context.Context, inst *Installment, expectedVersion int) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for receipt numbers and reschedule timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type PaymentParams struct {
	Amount decimal.Decimal
	Date   time.Time
	Method Method
	Notes  string
}

type PaymentResult struct {
	Installment   *Installment
	ReceiptNumber string
	// Applied is the part of the payment credited to the installment.
	Applied decimal.Decimal
	// Overage is the part of the payment above what was owed.
	Overage decimal.Decimal
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Installment, error) {
	return s.repo.GetInstallment(ctx, id)
}

func (s *Service) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Installment, error) {
	return s.repo.ListByTransaction(ctx, transactionID)
}

// RegisterPayment credits a payment to an installment. Invalid input is
// rejected before the installment is read.
func (s *Service) RegisterPayment(ctx context.Context, id uuid.UUID, params PaymentParams) (*PaymentResult, error) {
	payment := Payment{
		Amount:        params.Amount,
		Date:          params.Date,
		Method:        params.Method,
		Notes:         params.Notes,
		ReceiptNumber: ReceiptNumber(s.now()),
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	cur, err := s.repo.GetInstallment(ctx, id)
	if err != nil {
		return nil, err
	}

	next, overage, err := ApplyPayment(*cur, payment)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInstallment(ctx, &next, cur.Version); err != nil {
		return nil, fmt.Errorf("saving payment: %w", err)
	}

	return &PaymentResult{
		Installment:   &next,
		ReceiptNumber: payment.ReceiptNumber,
		Applied:       payment.Amount.Sub(overage),
		Overage:       overage,
	}, nil
}

type RescheduleParams struct {
	NewDueDate time.Time
	LateFee    decimal.Decimal
	Reason     string
}

// Reschedule moves an installment to a new due date and adds the late fee to
// what it owes.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, params RescheduleParams) (*Installment, error) {
	r := Reschedule{
		NewDueDate: params.NewDueDate,
		LateFee:    params.LateFee,
		Reason:     params.Reason,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	cur, err := s.repo.GetInstallment(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := ApplyReschedule(*cur, r, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInstallment(ctx, &next, cur.Version); err != nil {
		return nil, fmt.Errorf("saving reschedule: %w", err)
	}

	return &next, nil
}

// ReceiptNumber is unique only as long as the clock is monotonic and there
// is a single writer.
func ReceiptNumber(t time.Time) string {
	return "REC-" + strconv.FormatInt(t.UnixMilli(), 10)
}
