package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/cuotas/internal/http/account"
	"github.com/MrJamesThe3rd/cuotas/internal/http/auth"
	"github.com/MrJamesThe3rd/cuotas/internal/http/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/http/importcsv"
	"github.com/MrJamesThe3rd/cuotas/internal/http/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/http/notification"
	"github.com/MrJamesThe3rd/cuotas/internal/http/product"
	"github.com/MrJamesThe3rd/cuotas/internal/http/transaction"
)

type Handlers struct {
	Auth          *auth.Handler
	Customers     *customer.Handler
	Accounts      *account.Handler
	Products      *product.Handler
	Transactions  *transaction.Handler
	Installments  *installment.Handler
	Notifications *notification.Handler
	Import        *importcsv.Handler
}

type Options struct {
	CORSOrigins []string
	// RequireAuth puts every route except login behind Handlers.Auth.
	RequireAuth bool
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", h.Auth.Routes)

		r.Group(func(r chi.Router) {
			if opts.RequireAuth {
				r.Use(h.Auth.RequireToken)
			}

			r.Route("/customers", func(r chi.Router) {
				h.Customers.Routes(r)
				h.Accounts.Routes(r)
			})

			r.Route("/products", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Products.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/installments", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Installments.Routes(r)
			})

			r.Route("/notifications", h.Notifications.Routes)
			r.Route("/import", h.Import.Routes)
		})
	})

	return router
}
