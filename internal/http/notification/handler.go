package notification

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
)

type Handler struct {
	svc *duestatus.Service
	now func() time.Time
}

func NewHandler(svc *duestatus.Service, now func() time.Time) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.feed)
}

// feed lists overdue, due today and upcoming installments. ?horizon=N
// overrides how many days ahead upcoming installments are shown.
func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	horizon := duestatus.FeedHorizonDays

	if s := r.URL.Query().Get("horizon"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respond.BadRequest(w, "horizon must be a positive number of days")
			return
		}

		horizon = n
	}

	feed, err := h.svc.Feed(r.Context(), h.now(), horizon)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(feed))
}
