package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
)

// Request is the customer payload shared by create, update and the
// import confirmation.
type Request struct {
	Name       string `json:"name"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	Notes      string `json:"notes"`
}

func (req Request) Params() customer.CreateParams {
	return customer.CreateParams{
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Notes:      req.Notes,
	}
}

type Response struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	DocumentID string     `json:"document_id,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	Address    string     `json:"address,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func ToResponse(c *customer.Customer) Response {
	return Response{
		ID:         c.ID,
		Name:       c.Name,
		DocumentID: c.DocumentID,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func ToResponseList(cs []*customer.Customer) []Response {
	resp := make([]Response, len(cs))
	for i, c := range cs {
		resp[i] = ToResponse(c)
	}

	return resp
}
