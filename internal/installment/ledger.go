package installment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
)

// Payment is a single payment registration against an installment.
type Payment struct {
	Amount        decimal.Decimal
	Date          time.Time
	Method        Method
	Notes         string
	ReceiptNumber string
}

func (p Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return apperr.Validation("amount", "must be greater than zero")
	}

	if p.Date.IsZero() {
		return apperr.Validation("date", "is required")
	}

	if !p.Method.Valid() {
		return apperr.Validation("method", "must be cash, transfer, card or other")
	}

	return nil
}

// ApplyPayment returns cur with p applied, and the part of p.Amount that
// exceeded what was owed. AmountPaid is clamped to the owed amount.
func ApplyPayment(cur Installment, p Payment) (Installment, decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return cur, decimal.Zero, err
	}

	if cur.State == StatePaid {
		return cur, decimal.Zero, apperr.Conflict("installment is already paid")
	}

	next := cur
	remaining := cur.Remaining()
	overage := decimal.Zero

	date := p.Date

	if p.Amount.GreaterThanOrEqual(remaining) {
		overage = p.Amount.Sub(remaining)
		next.AmountPaid = cur.Owed()
		next.State = StatePaid
		next.PaidDate = &date
	} else {
		next.AmountPaid = cur.AmountPaid.Add(p.Amount)
		next.State = StatePartial
	}

	next.LastPaymentDate = &date
	next.PaymentMethod = p.Method
	next.PaymentNotes = strings.TrimSpace(p.Notes)
	next.ReceiptNumber = p.ReceiptNumber

	return next, overage, nil
}

// Reschedule moves an installment to a new due date, folding a late fee into
// what it owes.
type Reschedule struct {
	NewDueDate time.Time
	LateFee    decimal.Decimal
	Reason     string
}

func (r Reschedule) Validate() error {
	if r.NewDueDate.IsZero() {
		return apperr.Validation("new_due_date", "is required")
	}

	if r.LateFee.IsNegative() {
		return apperr.Validation("late_fee", "cannot be negative")
	}

	return nil
}

// ApplyReschedule returns cur rescheduled according to r at time now.
func ApplyReschedule(cur Installment, r Reschedule, now time.Time) (Installment, error) {
	if err := r.Validate(); err != nil {
		return cur, err
	}

	if cur.State == StatePaid {
		return cur, apperr.Conflict("a paid installment cannot be rescheduled")
	}

	y, m, d := r.NewDueDate.Date()

	next := cur
	next.DueDate = time.Date(y, m, d, 0, 0, 0, 0, r.NewDueDate.Location())
	next.ScheduledAmount = cur.ScheduledAmount.Add(r.LateFee)
	next.LateFeeAmount = r.LateFee
	next.State = StateRescheduled
	next.RescheduledAt = &now
	next.RescheduleReason = nil

	if reason := strings.TrimSpace(r.Reason); reason != "" {
		next.RescheduleReason = &reason
	}

	return next, nil
}
