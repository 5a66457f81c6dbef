// Package duestatus sorts unpaid installments into overdue, due today and
// upcoming, and suggests late fees for the late ones.
package duestatus

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/calendar"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketDueToday Bucket = "due_today"
	BucketUpcoming Bucket = "upcoming"
)

const (
	// HighlightHorizonDays marks upcoming installments worth highlighting.
	HighlightHorizonDays = 7
	// FeedHorizonDays is how far ahead the notification feed looks.
	FeedHorizonDays = 15
)

// MonthlyLateRate is simple interest per started month of lateness.
var MonthlyLateRate = decimal.RequireFromString("0.01")

type Classification struct {
	Bucket        Bucket
	DaysFromToday int
}

// Classify places inst relative to today by calendar date. Paid
// installments are not classified and report ok = false.
func Classify(inst *installment.Installment, today time.Time) (Classification, bool) {
	if !inst.State.Open() {
		return Classification{}, false
	}

	days := calendar.DaysBetween(today, inst.DueDate)

	c := Classification{DaysFromToday: days}

	switch {
	case days < 0:
		c.Bucket = BucketOverdue
	case days == 0:
		c.Bucket = BucketDueToday
	default:
		c.Bucket = BucketUpcoming
	}

	return c, true
}

// SuggestedLateFee is base * MonthlyLateRate * ceil(|days| / 30).
func SuggestedLateFee(base decimal.Decimal, daysFromToday int) decimal.Decimal {
	days := daysFromToday
	if days < 0 {
		days = -days
	}

	months := (days + 29) / 30

	return base.Mul(MonthlyLateRate).Mul(decimal.NewFromInt(int64(months))).Round(2)
}

// SuggestedFeeFor returns the suggested fee for an overdue or rescheduled
// installment, using what it still owes as the base. Anything else gets
// zero.
func SuggestedFeeFor(inst *installment.Installment, today time.Time) decimal.Decimal {
	c, ok := Classify(inst, today)
	if !ok {
		return decimal.Zero
	}

	if c.Bucket != BucketOverdue && inst.State != installment.StateRescheduled {
		return decimal.Zero
	}

	return SuggestedLateFee(inst.Remaining(), c.DaysFromToday)
}
