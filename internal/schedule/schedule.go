// Package schedule builds the installment plan of a sale or loan at creation time.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/apperr"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

// Frequency is how often an installment falls due.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}

	return false
}

var hundred = decimal.NewFromInt(100)

const centPlaces = 2

// Terms are the financial terms a plan is generated from.
type Terms struct {
	Principal        decimal.Decimal
	InterestPercent  decimal.Decimal
	InstallmentCount int
	Frequency        Frequency
	StartDate        time.Time
}

// Plan is the generated schedule plus the derived totals.
type Plan struct {
	TotalAmount       decimal.Decimal
	InstallmentAmount decimal.Decimal
	Installments      []*installment.Installment
}

func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return apperr.Validation("principal", "must be greater than zero")
	}

	if t.InterestPercent.IsNegative() {
		return apperr.Validation("interest_percent", "cannot be negative")
	}

	if t.InstallmentCount <= 0 {
		return apperr.Validation("installment_count", "must be at least 1")
	}

	if !t.Frequency.Valid() {
		return apperr.Validation("payment_frequency", "must be weekly, biweekly or monthly")
	}

	if t.StartDate.IsZero() {
		return apperr.Validation("start_date", "is required")
	}

	return nil
}

// TotalAmount is principal * (1 + interestPercent/100).
func TotalAmount(principal, interestPercent decimal.Decimal) decimal.Decimal {
	return principal.Mul(decimal.NewFromInt(1).Add(interestPercent.Div(hundred)))
}

// Generate returns the plan for the given terms. The total and the
// installment amount are rounded half away from zero to cents, the precision
// amounts are stored with. Every installment carries the same amount; the
// rounding drift against the total is not moved to the last one.
func Generate(terms Terms) (*Plan, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	total := TotalAmount(terms.Principal, terms.InterestPercent).Round(centPlaces)
	amount := total.Div(decimal.NewFromInt(int64(terms.InstallmentCount))).Round(centPlaces)

	installments := make([]*installment.Installment, terms.InstallmentCount)
	for i := range installments {
		installments[i] = &installment.Installment{
			SequenceNumber:  i + 1,
			DueDate:         DueDate(terms.StartDate, terms.Frequency, i),
			ScheduledAmount: amount,
			AmountPaid:      decimal.Zero,
			LateFeeAmount:   decimal.Zero,
			State:           installment.StatePending,
		}
	}

	return &Plan{
		TotalAmount:       total,
		InstallmentAmount: amount,
		Installments:      installments,
	}, nil
}

// DueDate returns the due date of the installment that is offset periods
// after start. The first installment (offset 0) is due on start itself.
func DueDate(start time.Time, freq Frequency, offset int) time.Time {
	day := dateOnly(start)

	switch freq {
	case FrequencyWeekly:
		return day.AddDate(0, 0, 7*offset)
	case FrequencyBiweekly:
		return day.AddDate(0, 0, 15*offset)
	case FrequencyMonthly:
		return addMonthsClamped(day, offset)
	}

	return day
}

// addMonthsClamped moves t forward by n calendar months, clamping the day to
// the last day of the target month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()

	return first.AddDate(0, 0, min(d, last)-1)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
