package installment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

type Response struct {
	ID               uuid.UUID          `json:"id"`
	TransactionID    uuid.UUID          `json:"transaction_id"`
	SequenceNumber   int                `json:"sequence_number"`
	DueDate          string             `json:"due_date"`
	ScheduledAmount  decimal.Decimal    `json:"scheduled_amount"`
	AmountPaid       decimal.Decimal    `json:"amount_paid"`
	Remaining        decimal.Decimal    `json:"remaining"`
	PaidDate         *string            `json:"paid_date,omitempty"`
	State            installment.State  `json:"state"`
	LateFeeAmount    decimal.Decimal    `json:"late_fee_amount"`
	RescheduledAt    *string            `json:"rescheduled_at,omitempty"`
	RescheduleReason *string            `json:"reschedule_reason,omitempty"`
	LastPaymentDate  *string            `json:"last_payment_date,omitempty"`
	PaymentMethod    installment.Method `json:"payment_method,omitempty"`
	PaymentNotes     string             `json:"payment_notes,omitempty"`
	ReceiptNumber    string             `json:"receipt_number,omitempty"`
	Version          int                `json:"version"`
}

func ToResponse(inst *installment.Installment) Response {
	return Response{
		ID:               inst.ID,
		TransactionID:    inst.TransactionID,
		SequenceNumber:   inst.SequenceNumber,
		DueDate:          respond.Date(inst.DueDate),
		ScheduledAmount:  inst.ScheduledAmount,
		AmountPaid:       inst.AmountPaid,
		Remaining:        inst.Remaining(),
		PaidDate:         respond.DatePtr(inst.PaidDate),
		State:            inst.State,
		LateFeeAmount:    inst.LateFeeAmount,
		RescheduledAt:    respond.DatePtr(inst.RescheduledAt),
		RescheduleReason: inst.RescheduleReason,
		LastPaymentDate:  respond.DatePtr(inst.LastPaymentDate),
		PaymentMethod:    inst.PaymentMethod,
		PaymentNotes:     inst.PaymentNotes,
		ReceiptNumber:    inst.ReceiptNumber,
		Version:          inst.Version,
	}
}

func ToResponseList(insts []*installment.Installment) []Response {
	resp := make([]Response, len(insts))
	for i, inst := range insts {
		resp[i] = ToResponse(inst)
	}

	return resp
}

type messageResponse struct {
	Subject     string `json:"subject"`
	Text        string `json:"text"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
	MailtoURL   string `json:"mailto_url,omitempty"`
}

type paymentResponse struct {
	Installment   Response        `json:"installment"`
	ReceiptNumber string          `json:"receipt_number"`
	Applied       decimal.Decimal `json:"applied"`
	Overage       decimal.Decimal `json:"overage"`
	Receipt       messageResponse `json:"receipt"`
}

type lateFeeResponse struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	DaysFromToday int             `json:"days_from_today"`
	Remaining     decimal.Decimal `json:"remaining"`
	SuggestedFee  decimal.Decimal `json:"suggested_fee"`
}
