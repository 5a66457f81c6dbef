package balance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=balance
type Repository interface {
	// ListByCustomer returns the customer's transactions with their
	// installments loaded.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*transaction.Transaction, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// TransactionSummary puts the two outstanding views of one transaction side
// by side.
type TransactionSummary struct {
	Transaction *transaction.Transaction
	// Outstanding is total minus everything paid, partials included.
	Outstanding decimal.Decimal
	// Unpaid is what the open installments still owe, late fees included.
	Unpaid    decimal.Decimal
	PaidCount int
	OpenCount int
}

type Statement struct {
	CustomerID   uuid.UUID
	Ledger       Ledger
	Transactions []TransactionSummary
	Outstanding  decimal.Decimal
	Unpaid       decimal.Decimal
}

// Statement builds the running account of a customer across all of their
// transactions.
func (s *Service) Statement(ctx context.Context, customerID uuid.UUID) (*Statement, error) {
	txs, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	st := &Statement{
		CustomerID:  customerID,
		Ledger:      BuildLedger(txs, nil),
		Outstanding: decimal.Zero,
		Unpaid:      decimal.Zero,
	}

	for _, tx := range txs {
		sum := Summarize(tx)
		st.Transactions = append(st.Transactions, sum)
		st.Outstanding = st.Outstanding.Add(sum.Outstanding)
		st.Unpaid = st.Unpaid.Add(sum.Unpaid)
	}

	return st, nil
}

// Summarize computes both outstanding views from tx.Installments.
func Summarize(tx *transaction.Transaction) TransactionSummary {
	sum := TransactionSummary{
		Transaction: tx,
		Outstanding: TransactionOutstanding(tx, tx.Installments),
		Unpaid:      UnpaidOutstanding(tx.Installments),
	}

	for _, inst := range tx.Installments {
		if inst.State.Open() {
			sum.OpenCount++
		} else {
			sum.PaidCount++
		}
	}

	return sum
}
