package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer or borrower. A customer that owns transactions cannot
// be deleted.
type Customer struct {
	ID         uuid.UUID
	Name       string
	DocumentID string
	Phone      string
	Email      string
	Address    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
