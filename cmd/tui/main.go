package main

import (
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/cuotas/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/config"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	custStore "github.com/MrJamesThe3rd/cuotas/internal/customer/store"
	"github.com/MrJamesThe3rd/cuotas/internal/database"
	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	dueStore "github.com/MrJamesThe3rd/cuotas/internal/duestatus/store"
	"github.com/MrJamesThe3rd/cuotas/internal/export"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	instStore "github.com/MrJamesThe3rd/cuotas/internal/installment/store"
	"github.com/MrJamesThe3rd/cuotas/internal/money"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
	txStore "github.com/MrJamesThe3rd/cuotas/internal/transaction/store"
)

const exportDir = "./exports"

type model struct {
	cfg *config.Config

	customerService    *customer.Service
	balanceService     *balance.Service
	dueService         *duestatus.Service
	installmentService *installment.Service
	importService      *importer.Service
	exportService      *export.Service
	composer           *notify.Composer

	currentView View

	notificationsView view.NotificationsModel
	customersView     view.CustomersModel
	importView        view.ImportModel
}

type View int

const (
	ViewMenu          View = 0
	ViewNotifications View = 1
	ViewCustomers     View = 2
	ViewImport        View = 3
)

func initialModel() model {
	_ = godotenv.Load()

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

	formatter := money.Spanish()
	custSvc := customer.NewService(custStore.New(db))
	balanceSvc := balance.NewService(txStore.New(db))

	m := model{
		cfg:                cfg,
		customerService:    custSvc,
		balanceService:     balanceSvc,
		dueService:         duestatus.NewService(dueStore.New(db)),
		installmentService: installment.NewService(instStore.New(db)),
		importService:      importer.NewService(custSvc),
		exportService:      export.NewService(balanceSvc, formatter),
		composer: notify.NewComposer(notify.Business{
			Name:        cfg.Business.Name,
			Phone:       cfg.Business.Phone,
			CountryCode: cfg.Business.CountryCode,
		}, formatter),
		currentView: ViewMenu,
	}

	m.importView = view.NewImportModel(m.importService)

	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewNotifications
				m.notificationsView = view.NewNotificationsModel(
					m.dueService,
					m.installmentService,
					m.composer,
					m.cfg.Notifications.PollInterval,
					time.Now,
				)

				return m, m.notificationsView.Init()
			case "2":
				m.currentView = ViewCustomers
				m.customersView = view.NewCustomersModel(m.customerService, m.balanceService, m.exportService, exportDir)

				return m, m.customersView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.importService)

				return m, m.importView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewNotifications:
		var newModel tea.Model
		newModel, cmd = m.notificationsView.Update(msg)
		m.notificationsView = newModel.(view.NotificationsModel)
	case ViewCustomers:
		var newModel tea.Model
		newModel, cmd = m.customersView.Update(msg)
		m.customersView = newModel.(view.CustomersModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.cfg.App.Name + "\n\n" +
				"1. Vencimientos\n" +
				"2. Clientes y cuenta corriente\n" +
				"3. Importar clientes\n\n" +
				"q. Salir",
		)
	case ViewNotifications:
		return m.notificationsView.View()
	case ViewCustomers:
		return m.customersView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
