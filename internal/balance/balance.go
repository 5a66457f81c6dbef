// Package balance derives customer and transaction balances from the
// installment rows. There are three deliberately different views:
//
//   - BuildLedger: charges and fully settled installments, in date order, with
//     a running balance ("cuenta corriente"). Partial payments do not appear
//     until the installment is settled.
//   - TransactionOutstanding: total amount minus everything paid so far,
//     partial payments included.
//   - UnpaidOutstanding: what is left on the open installments only, late
//     fees included. This is the figure shown next to due-date notices.
package balance

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/calendar"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

// EntryKind tells a charge (debit) apart from a payment (credit).
type EntryKind string

const (
	EntryCharge  EntryKind = "charge"
	EntryPayment EntryKind = "payment"
)

type Entry struct {
	Date           time.Time
	Kind           EntryKind
	Description    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningBalance decimal.Decimal
	TransactionID  uuid.UUID
	InstallmentID  *uuid.UUID
	ReceiptNumber  string
}

// Ledger is a running account. A positive balance means the customer owes;
// a negative one means the customer is owed.
type Ledger struct {
	Entries        []Entry
	TotalCharges   decimal.Decimal
	TotalPayments  decimal.Decimal
	CurrentBalance decimal.Decimal
}

// BuildLedger emits one charge per transaction (dated at its creation) and
// one payment per installment that is paid and has a paid date. Entries are
// ordered by calendar day; entries on the same day keep insertion order,
// which is each transaction's charge followed by its payments.
//
// installments is keyed by transaction id. When a transaction already
// carries its Installments they are used if the map has no entry for it.
func BuildLedger(txs []*transaction.Transaction, installments map[uuid.UUID][]*installment.Installment) Ledger {
	var entries []Entry

	for _, tx := range txs {
		entries = append(entries, Entry{
			Date:          tx.CreatedAt,
			Kind:          EntryCharge,
			Description:   chargeDescription(tx),
			Debit:         tx.TotalAmount,
			Credit:        decimal.Zero,
			TransactionID: tx.ID,
		})

		insts, ok := installments[tx.ID]
		if !ok {
			insts = tx.Installments
		}

		for _, inst := range insts {
			if inst.State != installment.StatePaid || inst.PaidDate == nil {
				continue
			}

			entries = append(entries, Entry{
				Date:          *inst.PaidDate,
				Kind:          EntryPayment,
				Description:   fmt.Sprintf("Pago cuota %d/%d", inst.SequenceNumber, max(tx.InstallmentCount, len(insts))),
				Debit:         decimal.Zero,
				Credit:        inst.AmountPaid,
				TransactionID: tx.ID,
				InstallmentID: &inst.ID,
				ReceiptNumber: inst.ReceiptNumber,
			})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(calendar.Day(a.Date), calendar.Day(b.Date))
	})

	ledger := Ledger{
		Entries:        entries,
		TotalCharges:   decimal.Zero,
		TotalPayments:  decimal.Zero,
		CurrentBalance: decimal.Zero,
	}

	running := decimal.Zero

	for i := range ledger.Entries {
		e := &ledger.Entries[i]
		running = running.Add(e.Debit).Sub(e.Credit)
		e.RunningBalance = running

		ledger.TotalCharges = ledger.TotalCharges.Add(e.Debit)
		ledger.TotalPayments = ledger.TotalPayments.Add(e.Credit)
	}

	if len(ledger.Entries) > 0 {
		ledger.CurrentBalance = ledger.Entries[len(ledger.Entries)-1].RunningBalance
	}

	return ledger
}

func chargeDescription(tx *transaction.Transaction) string {
	label := "Venta"
	if tx.Kind == transaction.KindLoan {
		label = "Préstamo"
	}

	if tx.Description == "" {
		return fmt.Sprintf("%s en %d cuotas", label, tx.InstallmentCount)
	}

	return fmt.Sprintf("%s: %s (%d cuotas)", label, tx.Description, tx.InstallmentCount)
}

// TransactionOutstanding is totalAmount minus the sum of amountPaid across
// the transaction's installments. Late fees folded into installments are not
// part of totalAmount, so a transaction with fees can go below zero here.
func TransactionOutstanding(tx *transaction.Transaction, insts []*installment.Installment) decimal.Decimal {
	paid := decimal.Zero
	for _, inst := range insts {
		paid = paid.Add(inst.AmountPaid)
	}

	return tx.TotalAmount.Sub(paid)
}

// UnpaidOutstanding sums max(0, owed - paid) over the open installments.
// Paid installments contribute nothing.
func UnpaidOutstanding(insts []*installment.Installment) decimal.Decimal {
	total := decimal.Zero

	for _, inst := range insts {
		if !inst.State.Open() {
			continue
		}

		total = total.Add(inst.Remaining())
	}

	return total
}
