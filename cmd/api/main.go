package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cuotas/internal/auth"
	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/config"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	custStore "github.com/MrJamesThe3rd/cuotas/internal/customer/store"
	"github.com/MrJamesThe3rd/cuotas/internal/database"
	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	dueStore "github.com/MrJamesThe3rd/cuotas/internal/duestatus/store"
	"github.com/MrJamesThe3rd/cuotas/internal/export"
	cuotasHttp "github.com/MrJamesThe3rd/cuotas/internal/http"
	accountHandler "github.com/MrJamesThe3rd/cuotas/internal/http/account"
	authHandler "github.com/MrJamesThe3rd/cuotas/internal/http/auth"
	customerHandler "github.com/MrJamesThe3rd/cuotas/internal/http/customer"
	importHandler "github.com/MrJamesThe3rd/cuotas/internal/http/importcsv"
	instHandler "github.com/MrJamesThe3rd/cuotas/internal/http/installment"
	notificationHandler "github.com/MrJamesThe3rd/cuotas/internal/http/notification"
	productHandler "github.com/MrJamesThe3rd/cuotas/internal/http/product"
	txHandler "github.com/MrJamesThe3rd/cuotas/internal/http/transaction"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	instStore "github.com/MrJamesThe3rd/cuotas/internal/installment/store"
	"github.com/MrJamesThe3rd/cuotas/internal/money"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
	"github.com/MrJamesThe3rd/cuotas/internal/product"
	productStore "github.com/MrJamesThe3rd/cuotas/internal/product/store"
	"github.com/MrJamesThe3rd/cuotas/internal/transaction"
	txStore "github.com/MrJamesThe3rd/cuotas/internal/transaction/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	transactions := txStore.New(db)

	var (
		customerService    = customer.NewService(custStore.New(db))
		productService     = product.NewService(productStore.New(db))
		transactionService = transaction.NewService(transactions, transactions)
		installmentService = installment.NewService(instStore.New(db))
		balanceService     = balance.NewService(transactions)
		dueService         = duestatus.NewService(dueStore.New(db))
		exportService      = export.NewService(balanceService, money.Spanish())
		importService      = importer.NewService(customerService)
		authService        = auth.NewService(
			auth.NewStaticCredentials(cfg.Auth.Username, cfg.Auth.PasswordHash),
			cfg.Auth.JWTSecret,
			cfg.Auth.TokenTTL,
		)
		composer = notify.NewComposer(notify.Business{
			Name:        cfg.Business.Name,
			Phone:       cfg.Business.Phone,
			CountryCode: cfg.Business.CountryCode,
		}, money.Spanish())
	)

	handlers := cuotasHttp.Handlers{
		Auth:         authHandler.NewHandler(authService),
		Customers:    customerHandler.NewHandler(customerService),
		Products:     productHandler.NewHandler(productService),
		Transactions: txHandler.NewHandler(transactionService),
		Accounts: accountHandler.NewHandler(accountHandler.Deps{
			Customers: customerService,
			Txs:       transactionService,
			Balances:  balanceService,
			DueStatus: dueService,
			Exports:   exportService,
			Composer:  composer,
			Now:       time.Now,
		}),
		Installments:  instHandler.NewHandler(installmentService, transactionService, customerService, composer, time.Now),
		Notifications: notificationHandler.NewHandler(dueService, time.Now),
		Import:        importHandler.NewHandler(importService),
	}

	requireAuth := cfg.Auth.PasswordHash != ""
	if !requireAuth {
		slog.Warn("AUTH_PASSWORD_HASH is empty, the API is served without authentication")
	} else if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is required when authentication is enabled")
		os.Exit(1)
	}

	router := cuotasHttp.New(handlers, cuotasHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		RequireAuth: requireAuth,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
