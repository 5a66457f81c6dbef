// Package account serves the per-customer views: transactions, the running
// statement, its CSV download and the payment reminder.
package account

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/export"
	"github.com/MrJamesThe3rd/cuotas/internal/http/notification"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	txHTTP "github.com/MrJamesThe3rd/cuotas/internal/http/transaction"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
)

type Handler struct {
	custSvc    *customer.Service
	txSvc      *transaction.Service
	balanceSvc *balance.Service
	dueSvc     *duestatus.Service
	exportSvc  *export.Service
	composer   *notify.Composer
	now        func() time.Time
}

type Deps struct {
	Customers *customer.Service
	Txs       *transaction.Service
	Balances  *balance.Service
	DueStatus *duestatus.Service
	Exports   *export.Service
	Composer  *notify.Composer
	Now       func() time.Time
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		custSvc:    d.Customers,
		txSvc:      d.Txs,
		balanceSvc: d.Balances,
		dueSvc:     d.DueStatus,
		exportSvc:  d.Exports,
		composer:   d.Composer,
		now:        d.Now,
	}
}

// Routes are mounted under the customer routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/transactions", h.transactions)
	r.Get("/{id}/statement", h.statement)
	r.Get("/{id}/statement.csv", h.statementCSV)
	r.Get("/{id}/reminder", h.reminder)
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if _, err := h.custSvc.Get(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.txSvc.ListByCustomer(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, txHTTP.ToResponseList(txs))
}

type entryResponse struct {
	Date           string            `json:"date"`
	Kind           balance.EntryKind `json:"kind"`
	Description    string            `json:"description"`
	Debit          decimal.Decimal   `json:"debit"`
	Credit         decimal.Decimal   `json:"credit"`
	RunningBalance decimal.Decimal   `json:"running_balance"`
	TransactionID  uuid.UUID         `json:"transaction_id"`
	InstallmentID  *uuid.UUID        `json:"installment_id,omitempty"`
	ReceiptNumber  string            `json:"receipt_number,omitempty"`
}

type statementResponse struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Entries        []entryResponse `json:"entries"`
	TotalCharges   decimal.Decimal `json:"total_charges"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	Unpaid         decimal.Decimal `json:"unpaid"`
	Summary        string          `json:"summary"`
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	c, err := h.custSvc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	st, err := h.balanceSvc.Statement(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := statementResponse{
		CustomerID:     id,
		CustomerName:   c.Name,
		Entries:        make([]entryResponse, len(st.Ledger.Entries)),
		TotalCharges:   st.Ledger.TotalCharges,
		TotalPayments:  st.Ledger.TotalPayments,
		CurrentBalance: st.Ledger.CurrentBalance,
		Outstanding:    st.Outstanding,
		Unpaid:         st.Unpaid,
		Summary:        h.exportSvc.GenerateEmailBody(st),
	}

	for i, e := range st.Ledger.Entries {
		resp.Entries[i] = entryResponse{
			Date:           respond.Date(e.Date),
			Kind:           e.Kind,
			Description:    e.Description,
			Debit:          e.Debit,
			Credit:         e.Credit,
			RunningBalance: e.RunningBalance,
			TransactionID:  e.TransactionID,
			InstallmentID:  e.InstallmentID,
			ReceiptNumber:  e.ReceiptNumber,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) statementCSV(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	c, err := h.custSvc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.exportSvc.WriteStatement(r.Context(), &buf, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(c.Name, h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type reminderResponse struct {
	Subject     string                    `json:"subject"`
	Text        string                    `json:"text"`
	WhatsAppURL string                    `json:"whatsapp_url,omitempty"`
	MailtoURL   string                    `json:"mailto_url,omitempty"`
	Feed        notification.FeedResponse `json:"feed"`
}

func (h *Handler) reminder(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	c, err := h.custSvc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	feed, err := h.dueSvc.ForCustomer(r.Context(), id, h.now())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	msg := h.composer.Reminder(notify.Contact{Name: c.Name, Phone: c.Phone, Email: c.Email}, feed)

	respond.JSON(w, http.StatusOK, reminderResponse{
		Subject:     msg.Subject,
		Text:        msg.Text,
		WhatsAppURL: msg.WhatsAppURL,
		MailtoURL:   msg.MailtoURL,
		Feed:        notification.ToResponse(feed),
	})
}
