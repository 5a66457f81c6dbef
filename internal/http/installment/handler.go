package installment

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/calendar"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type Handler struct {
	instSvc  *installment.Service
	txSvc    *transaction.Service
	custSvc  *customer.Service
	composer *notify.Composer
	now      func() time.Time
}

func NewHandler(
	instSvc *installment.Service,
	txSvc *transaction.Service,
	custSvc *customer.Service,
	composer *notify.Composer,
	now func() time.Time,
) *Handler {
	return &Handler{
		instSvc:  instSvc,
		txSvc:    txSvc,
		custSvc:  custSvc,
		composer: composer,
		now:      now,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Post("/{id}/payments", h.registerPayment)
	r.Post("/{id}/reschedule", h.reschedule)
	r.Get("/{id}/late-fee", h.lateFee)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	inst, err := h.instSvc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inst))
}

type paymentRequest struct {
	Amount decimal.Decimal    `json:"amount"`
	Date   string             `json:"date"`
	Method installment.Method `json:"method"`
	Notes  string             `json:"notes"`
}

func (h *Handler) registerPayment(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req paymentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	date, err := respond.ParseDate(req.Date)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if date.IsZero() {
		date = h.today()
	}

	res, err := h.instSvc.RegisterPayment(r.Context(), id, installment.PaymentParams{
		Amount: req.Amount,
		Date:   date,
		Method: req.Method,
		Notes:  req.Notes,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	contact, description := h.receiptContext(r.Context(), res.Installment)
	msg := h.composer.Receipt(contact, description, res)

	respond.JSON(w, http.StatusOK, paymentResponse{
		Installment:   ToResponse(res.Installment),
		ReceiptNumber: res.ReceiptNumber,
		Applied:       res.Applied,
		Overage:       res.Overage,
		Receipt: messageResponse{
			Subject:     msg.Subject,
			Text:        msg.Text,
			WhatsAppURL: msg.WhatsAppURL,
			MailtoURL:   msg.MailtoURL,
		},
	})
}

// receiptContext looks up who paid and for what. The payment is already
// stored, so a failed lookup only leaves the receipt without those details.
func (h *Handler) receiptContext(ctx context.Context, inst *installment.Installment) (notify.Contact, string) {
	tx, err := h.txSvc.Get(ctx, inst.TransactionID)
	if err != nil {
		slog.Warn("receipt without transaction details", "installment_id", inst.ID, "error", err)
		return notify.Contact{}, ""
	}

	description := tx.Description
	if description == "" {
		description = "Venta en cuotas"
		if tx.Kind == transaction.KindLoan {
			description = "Préstamo"
		}
	}

	c, err := h.custSvc.Get(ctx, tx.CustomerID)
	if err != nil {
		slog.Warn("receipt without customer details", "installment_id", inst.ID, "error", err)
		return notify.Contact{}, description
	}

	return notify.Contact{Name: c.Name, Phone: c.Phone, Email: c.Email}, description
}

type rescheduleRequest struct {
	NewDueDate string          `json:"new_due_date"`
	LateFee    decimal.Decimal `json:"late_fee"`
	Reason     string          `json:"reason"`
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var req rescheduleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	dueDate, err := respond.ParseDate(req.NewDueDate)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	inst, err := h.instSvc.Reschedule(r.Context(), id, installment.RescheduleParams{
		NewDueDate: dueDate,
		LateFee:    req.LateFee,
		Reason:     req.Reason,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(inst))
}

func (h *Handler) lateFee(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	inst, err := h.instSvc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	today := h.today()

	respond.JSON(w, http.StatusOK, lateFeeResponse{
		InstallmentID: inst.ID,
		DaysFromToday: calendar.DaysBetween(today, inst.DueDate),
		Remaining:     inst.Remaining(),
		SuggestedFee:  duestatus.SuggestedFeeFor(inst, today),
	})
}

func (h *Handler) today() time.Time {
	y, m, d := h.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
