package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State is the payment state of a single installment.
type State string

const (
	StatePending     State = "pending"
	StatePartial     State = "partial"
	StatePaid        State = "paid"
	StateRescheduled State = "rescheduled"
)

// OpenStates are the states that still owe money.
var OpenStates = []State{StatePending, StatePartial, StateRescheduled}

func (s State) Open() bool {
	return s == StatePending || s == StatePartial || s == StateRescheduled
}

// Method is how a payment was received.
type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
	MethodOther    Method = "other"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodOther:
		return true
	}

	return false
}

// Installment is one scheduled payment ("cuota") of a transaction.
//
// Payments are cumulative on the row: only the last payment's date, method,
// notes and receipt are kept. Rescheduling overwrites the previous
// reschedule's metadata.
type Installment struct {
	ID             uuid.UUID
	TransactionID  uuid.UUID
	SequenceNumber int
	DueDate        time.Time
	// ScheduledAmount includes every late fee folded in by a reschedule.
	ScheduledAmount decimal.Decimal
	AmountPaid      decimal.Decimal
	PaidDate        *time.Time
	State           State

	LateFeeAmount    decimal.Decimal
	RescheduledAt    *time.Time
	RescheduleReason *string

	LastPaymentDate *time.Time
	PaymentMethod   Method
	PaymentNotes    string
	ReceiptNumber   string

	// Version is bumped by the store on every update.
	Version   int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Owed is the full amount the installment requires to be settled.
func (i *Installment) Owed() decimal.Decimal {
	return i.ScheduledAmount
}

// Remaining is what is still owed, never negative.
func (i *Installment) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.Owed().Sub(i.AmountPaid))
}
