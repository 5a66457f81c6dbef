package duestatus

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
)

// Item is an installment together with the transaction and customer it
// belongs to.
type Item struct {
	Installment            *installment.Installment
	TransactionKind        string
	TransactionDescription string
	InstallmentCount       int
	CustomerID             uuid.UUID
	CustomerName           string
	CustomerPhone          string
	CustomerEmail          string
}

type ListFilter struct {
	States     []installment.State
	CustomerID *uuid.UUID
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=duestatus
type Repository interface {
	ListInstallments(ctx context.Context, filter ListFilter) ([]Item, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Notice struct {
	Item
	Classification
	Remaining    decimal.Decimal
	SuggestedFee decimal.Decimal
	// Highlight is set for anything due within HighlightHorizonDays,
	// including overdue items.
	Highlight bool
}

type Total struct {
	ID     uuid.UUID
	Label  string
	Unpaid decimal.Decimal
	Count  int
}

type Feed struct {
	Today    time.Time
	Horizon  int
	Overdue  []Notice
	DueToday []Notice
	Upcoming []Notice
	// Totals cover every open installment, not only those in the feed.
	ByCustomer    []Total
	ByTransaction []Total
	Unpaid        decimal.Decimal
}

func (f *Feed) Len() int {
	return len(f.Overdue) + len(f.DueToday) + len(f.Upcoming)
}

// Feed loads every open installment and classifies it against today.
// Upcoming installments further than horizonDays away are left out, with
// the same horizon rules as BuildFeed.
func (s *Service) Feed(ctx context.Context, today time.Time, horizonDays int) (*Feed, error) {
	items, err := s.repo.ListInstallments(ctx, ListFilter{States: installment.OpenStates})
	if err != nil {
		return nil, fmt.Errorf("loading open installments: %w", err)
	}

	return BuildFeed(items, today, horizonDays), nil
}

// ForCustomer is the feed of a single customer with no horizon limit, used
// for reminder messages.
func (s *Service) ForCustomer(ctx context.Context, customerID uuid.UUID, today time.Time) (*Feed, error) {
	items, err := s.repo.ListInstallments(ctx, ListFilter{States: installment.OpenStates, CustomerID: &customerID})
	if err != nil {
		return nil, fmt.Errorf("loading customer installments: %w", err)
	}

	return BuildFeed(items, today, -1), nil
}

// BuildFeed classifies items. horizonDays of zero means FeedHorizonDays and
// a negative value disables the horizon.
func BuildFeed(items []Item, today time.Time, horizonDays int) *Feed {
	if horizonDays == 0 {
		horizonDays = FeedHorizonDays
	}

	feed := &Feed{Today: today, Horizon: horizonDays, Unpaid: decimal.Zero}

	byCustomer := map[uuid.UUID]*Total{}
	byTransaction := map[uuid.UUID]*Total{}

	for _, it := range items {
		inst := it.Installment

		c, ok := Classify(inst, today)
		if !ok {
			continue
		}

		remaining := inst.Remaining()
		feed.Unpaid = feed.Unpaid.Add(remaining)
		addTotal(byCustomer, it.CustomerID, it.CustomerName, remaining)
		addTotal(byTransaction, inst.TransactionID, transactionLabel(it), remaining)

		if c.Bucket == BucketUpcoming && horizonDays > 0 && c.DaysFromToday > horizonDays {
			continue
		}

		n := Notice{
			Item:           it,
			Classification: c,
			Remaining:      remaining,
			SuggestedFee:   SuggestedFeeFor(inst, today),
			Highlight:      c.DaysFromToday <= HighlightHorizonDays,
		}

		switch c.Bucket {
		case BucketOverdue:
			feed.Overdue = append(feed.Overdue, n)
		case BucketDueToday:
			feed.DueToday = append(feed.DueToday, n)
		case BucketUpcoming:
			feed.Upcoming = append(feed.Upcoming, n)
		}
	}

	for _, bucket := range [][]Notice{feed.Overdue, feed.DueToday, feed.Upcoming} {
		slices.SortStableFunc(bucket, compareNotices)
	}

	feed.ByCustomer = sortedTotals(byCustomer)
	feed.ByTransaction = sortedTotals(byTransaction)

	return feed
}

func compareNotices(a, b Notice) int {
	if c := cmp.Compare(a.DaysFromToday, b.DaysFromToday); c != 0 {
		return c
	}

	if c := strings.Compare(a.CustomerName, b.CustomerName); c != 0 {
		return c
	}

	return cmp.Compare(a.Installment.SequenceNumber, b.Installment.SequenceNumber)
}

func addTotal(totals map[uuid.UUID]*Total, id uuid.UUID, label string, amount decimal.Decimal) {
	t, ok := totals[id]
	if !ok {
		t = &Total{ID: id, Label: label, Unpaid: decimal.Zero}
		totals[id] = t
	}

	t.Unpaid = t.Unpaid.Add(amount)
	t.Count++
}

func sortedTotals(totals map[uuid.UUID]*Total) []Total {
	out := make([]Total, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}

	slices.SortFunc(out, func(a, b Total) int {
		if c := b.Unpaid.Cmp(a.Unpaid); c != 0 {
			return c
		}

		return strings.Compare(a.Label, b.Label)
	})

	return out
}

func transactionLabel(it Item) string {
	if it.TransactionDescription != "" {
		return it.CustomerName + " - " + it.TransactionDescription
	}

	return it.CustomerName + " - " + it.TransactionKind
}

// Outstanding is the unpaid total of the given items' installments.
func Outstanding(items []Item) decimal.Decimal {
	insts := make([]*installment.Installment, 0, len(items))
	for _, it := range items {
		insts = append(insts, it.Installment)
	}

	return balance.UnpaidOutstanding(insts)
}
