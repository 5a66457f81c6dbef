package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
)

// Kind tells a sale on installments apart from a cash loan.
type Kind string

const (
	KindSale Kind = "sale"
	KindLoan Kind = "loan"
)

func (k Kind) Valid() bool {
	return k == KindSale || k == KindLoan
}

// Status is a display label. Nothing in the ledger recomputes it.
type Status string

const (
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusDelinquent Status = "delinquent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDelinquent:
		return true
	}

	return false
}

// Transaction is a sale on credit or a cash loan. Its financial terms are
// fixed at creation; late fees change individual installments, never
// TotalAmount.
type Transaction struct {
	ID                uuid.UUID
	CustomerID        uuid.UUID
	ProductID         *uuid.UUID // nil for loans
	Kind              Kind
	Status            Status
	Description       string
	Principal         decimal.Decimal
	InterestPercent   decimal.Decimal
	TotalAmount       decimal.Decimal
	PaymentFrequency  schedule.Frequency
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	StartDate         time.Time
	Installments      []*installment.Installment // Loaded with the transaction
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}
