package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=importer
type Directory interface {
	List(ctx context.Context, filter customer.ListFilter) ([]*customer.Customer, error)
	CreateBatch(ctx context.Context, params []customer.CreateParams) ([]*customer.Customer, error)
}

type Service struct {
	customers Directory
}

func NewService(customers Directory) *Service {
	return &Service{customers: customers}
}

// Duplicate pairs an incoming row with the existing customer that has the
// same document or phone number.
type Duplicate struct {
	Incoming customer.CreateParams
	Existing *customer.Customer
}

type Result struct {
	Created    []*customer.Customer
	New        []customer.CreateParams
	Duplicates []Duplicate
}

// Import parses r and creates every row at once. When any row looks like an
// existing customer nothing is created; the caller gets New and Duplicates
// back to decide and then calls Confirm with the rows to keep.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	params, err := Parse(r)
	if err != nil {
		return nil, err
	}

	existing, err := s.customers.List(ctx, customer.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	byKey := make(map[string]*customer.Customer)

	for _, c := range existing {
		for _, k := range keys(c.DocumentID, c.Phone) {
			byKey[k] = c
		}
	}

	res := &Result{}

	for _, p := range params {
		if dup := findDuplicate(byKey, p); dup != nil {
			res.Duplicates = append(res.Duplicates, Duplicate{Incoming: p, Existing: dup})
			continue
		}

		res.New = append(res.New, p)
	}

	if len(res.Duplicates) > 0 {
		return res, nil
	}

	res.Created, err = s.Confirm(ctx, res.New)
	if err != nil {
		return nil, err
	}

	res.New = nil

	return res, nil
}

// Confirm creates the given rows in one batch.
func (s *Service) Confirm(ctx context.Context, params []customer.CreateParams) ([]*customer.Customer, error) {
	created, err := s.customers.CreateBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("creating customers: %w", err)
	}

	return created, nil
}

func findDuplicate(byKey map[string]*customer.Customer, p customer.CreateParams) *customer.Customer {
	for _, k := range keys(p.DocumentID, p.Phone) {
		if c, ok := byKey[k]; ok {
			return c
		}
	}

	return nil
}

// keys returns the comparable forms of a document and phone number: digits
// and letters only, uppercased.
func keys(document, phone string) []string {
	var out []string

	if d := alnum(document); d != "" {
		out = append(out, "doc:"+d)
	}

	if p := alnum(phone); p != "" {
		out = append(out, "tel:"+p)
	}

	return out
}

func alnum(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			return r
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		}

		return -1
	}, s)
}
