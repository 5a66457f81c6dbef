package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item sold on installments.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
