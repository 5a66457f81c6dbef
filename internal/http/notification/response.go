package notification

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

type noticeResponse struct {
	InstallmentID          uuid.UUID         `json:"installment_id"`
	TransactionID          uuid.UUID         `json:"transaction_id"`
	SequenceNumber         int               `json:"sequence_number"`
	InstallmentCount       int               `json:"installment_count"`
	DueDate                string            `json:"due_date"`
	State                  installment.State `json:"state"`
	Bucket                 duestatus.Bucket  `json:"bucket"`
	DaysFromToday          int               `json:"days_from_today"`
	Highlight              bool              `json:"highlight"`
	Remaining              decimal.Decimal   `json:"remaining"`
	SuggestedFee           decimal.Decimal   `json:"suggested_fee"`
	TransactionKind        string            `json:"transaction_kind"`
	TransactionDescription string            `json:"transaction_description,omitempty"`
	CustomerID             uuid.UUID         `json:"customer_id"`
	CustomerName           string            `json:"customer_name"`
	CustomerPhone          string            `json:"customer_phone,omitempty"`
	CustomerEmail          string            `json:"customer_email,omitempty"`
}

type totalResponse struct {
	ID     uuid.UUID       `json:"id"`
	Label  string          `json:"label"`
	Unpaid decimal.Decimal `json:"unpaid"`
	Count  int             `json:"count"`
}

type FeedResponse struct {
	Today         string           `json:"today"`
	Horizon       int              `json:"horizon_days"`
	Count         int              `json:"count"`
	Overdue       []noticeResponse `json:"overdue"`
	DueToday      []noticeResponse `json:"due_today"`
	Upcoming      []noticeResponse `json:"upcoming"`
	ByCustomer    []totalResponse  `json:"by_customer"`
	ByTransaction []totalResponse  `json:"by_transaction"`
	Unpaid        decimal.Decimal  `json:"unpaid"`
}

func toNotices(ns []duestatus.Notice) []noticeResponse {
	resp := make([]noticeResponse, len(ns))
	for i, n := range ns {
		resp[i] = noticeResponse{
			InstallmentID:          n.Installment.ID,
			TransactionID:          n.Installment.TransactionID,
			SequenceNumber:         n.Installment.SequenceNumber,
			InstallmentCount:       n.InstallmentCount,
			DueDate:                respond.Date(n.Installment.DueDate),
			State:                  n.Installment.State,
			Bucket:                 n.Bucket,
			DaysFromToday:          n.DaysFromToday,
			Highlight:              n.Highlight,
			Remaining:              n.Remaining,
			SuggestedFee:           n.SuggestedFee,
			TransactionKind:        n.TransactionKind,
			TransactionDescription: n.TransactionDescription,
			CustomerID:             n.CustomerID,
			CustomerName:           n.CustomerName,
			CustomerPhone:          n.CustomerPhone,
			CustomerEmail:          n.CustomerEmail,
		}
	}

	return resp
}

func toTotals(ts []duestatus.Total) []totalResponse {
	resp := make([]totalResponse, len(ts))
	for i, t := range ts {
		resp[i] = totalResponse{ID: t.ID, Label: t.Label, Unpaid: t.Unpaid, Count: t.Count}
	}

	return resp
}

// ToResponse renders a feed with empty buckets as [] rather than null.
func ToResponse(f *duestatus.Feed) FeedResponse {
	return FeedResponse{
		Today:         respond.Date(f.Today),
		Horizon:       f.Horizon,
		Count:         f.Len(),
		Overdue:       toNotices(f.Overdue),
		DueToday:      toNotices(f.DueToday),
		Upcoming:      toNotices(f.Upcoming),
		ByCustomer:    toTotals(f.ByCustomer),
		ByTransaction: toTotals(f.ByTransaction),
		Unpaid:        f.Unpaid,
	}
}
