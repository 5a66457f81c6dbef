package transaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/schedule"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	CustomerID       uuid.UUID          `json:"customer_id"`
	ProductID        *uuid.UUID         `json:"product_id"`
	Kind             transaction.Kind   `json:"kind"`
	Description      string             `json:"description"`
	Principal        decimal.Decimal    `json:"principal"`
	InterestPercent  decimal.Decimal    `json:"interest_percent"`
	Frequency        schedule.Frequency `json:"payment_frequency"`
	InstallmentCount int                `json:"installment_count"`
	StartDate        string             `json:"start_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	start, err := respond.ParseDate(req.StartDate)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		CustomerID:       req.CustomerID,
		ProductID:        req.ProductID,
		Kind:             req.Kind,
		Description:      req.Description,
		Principal:        req.Principal,
		InterestPercent:  req.InterestPercent,
		Frequency:        req.Frequency,
		InstallmentCount: req.InstallmentCount,
		StartDate:        start,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// delete requires ?confirm=true since it also removes every installment.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	if err := h.svc.Delete(r.Context(), id, confirmed); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
