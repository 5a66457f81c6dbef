package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	instHTTP "github.com/MrJamesThe3rd/cuotas/internal/http/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type Response struct {
	ID                uuid.UUID           `json:"id"`
	CustomerID        uuid.UUID           `json:"customer_id"`
	ProductID         *uuid.UUID          `json:"product_id,omitempty"`
	Kind              transaction.Kind    `json:"kind"`
	Status            transaction.Status  `json:"status"`
	Description       string              `json:"description,omitempty"`
	Principal         decimal.Decimal     `json:"principal"`
	InterestPercent   decimal.Decimal     `json:"interest_percent"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PaymentFrequency  schedule.Frequency  `json:"payment_frequency"`
	InstallmentCount  int                 `json:"installment_count"`
	InstallmentAmount decimal.Decimal     `json:"installment_amount"`
	StartDate         string              `json:"start_date"`
	Outstanding       decimal.Decimal     `json:"outstanding"`
	Unpaid            decimal.Decimal     `json:"unpaid"`
	PaidCount         int                 `json:"paid_count"`
	OpenCount         int                 `json:"open_count"`
	Installments      []instHTTP.Response `json:"installments"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         *time.Time          `json:"updated_at,omitempty"`
}

// ToResponse includes both outstanding views computed from the loaded
// installments.
func ToResponse(tx *transaction.Transaction) Response {
	sum := balance.Summarize(tx)

	return Response{
		ID:                tx.ID,
		CustomerID:        tx.CustomerID,
		ProductID:         tx.ProductID,
		Kind:              tx.Kind,
		Status:            tx.Status,
		Description:       tx.Description,
		Principal:         tx.Principal,
		InterestPercent:   tx.InterestPercent,
		TotalAmount:       tx.TotalAmount,
		PaymentFrequency:  tx.PaymentFrequency,
		InstallmentCount:  tx.InstallmentCount,
		InstallmentAmount: tx.InstallmentAmount,
		StartDate:         respond.Date(tx.StartDate),
		Outstanding:       sum.Outstanding,
		Unpaid:            sum.Unpaid,
		PaidCount:         sum.PaidCount,
		OpenCount:         sum.OpenCount,
		Installments:      instHTTP.ToResponseList(tx.Installments),
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
