package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cuotas/internal/balance"
	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/export"
)

type customersState int

const (
	customersStateBrowse customersState = iota
	customersStateSearch
	customersStateStatement
	customersStateExporting
)

const exportTimeout = 2 * time.Minute

type CustomersModel struct {
	CommonModel
	custSvc    *customer.Service
	balanceSvc *balance.Service
	exportSvc  *export.Service
	outputDir  string

	state     customersState
	table     table.Model
	customers []*customer.Customer
	search    *string
	form      *huh.Form

	current   *customer.Customer
	statement *balance.Statement
	ledger    table.Model
	spinner   spinner.Model

	loading bool
	err     error
	status  string
}

func NewCustomersModel(custSvc *customer.Service, balanceSvc *balance.Service, exportSvc *export.Service, outputDir string) CustomersModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return CustomersModel{
		custSvc:    custSvc,
		balanceSvc: balanceSvc,
		exportSvc:  exportSvc,
		outputDir:  outputDir,
		table: newTable([]table.Column{
			{Title: "Nombre", Width: 30},
			{Title: "Documento", Width: 14},
			{Title: "Teléfono", Width: 16},
			{Title: "Email", Width: 30},
		}, 15),
		ledger: newTable([]table.Column{
			{Title: "Fecha", Width: 10},
			{Title: "Descripción", Width: 40},
			{Title: "Debe", Width: 14},
			{Title: "Haber", Width: 14},
			{Title: "Saldo", Width: 14},
			{Title: "Recibo", Width: 18},
		}, 15),
		search:  new(""),
		spinner: s,
		loading: true,
	}
}

func (m CustomersModel) Title() string { return "Clientes" }

func (m CustomersModel) ShortHelp() string {
	switch m.state {
	case customersStateSearch:
		return "Enter: buscar | Esc: cancelar"
	case customersStateStatement:
		return "Esc: volver | x: exportar CSV"
	case customersStateExporting:
		return "Exportando..."
	}

	return "Esc: menú | Enter: cuenta corriente | /: buscar | r: actualizar"
}

func (m CustomersModel) Init() tea.Cmd {
	return m.loadCustomersCmd()
}

func (m CustomersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadCustomersMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.customers = msg.customers
		m.refreshTable()

		return m, nil

	case loadStatementMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.state = customersStateBrowse

			return m, nil
		}

		m.statement = msg.statement
		m.refreshLedger()
		m.state = customersStateStatement
		m.table.Blur()
		m.ledger.Focus()

		return m, nil

	case exportDoneMsg:
		m.state = customersStateStatement
		if msg.err != nil {
			m.status = errorStyle(fmt.Sprintf("Error al exportar: %v", msg.err))
		} else {
			m.status = successStyle("Exportado en " + msg.path)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-10))
		m.ledger.SetHeight(max(5, msg.Height-14))

		return m, nil
	}

	switch m.state {
	case customersStateBrowse:
		return m.updateBrowse(msg)
	case customersStateSearch:
		return m.updateSearch(msg)
	case customersStateStatement:
		return m.updateStatement(msg)
	case customersStateExporting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m CustomersModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCustomersCmd()
		case "/":
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Key("search").
						Title("Buscar por nombre, documento o teléfono").
						Value(m.search),
				),
			).WithWidth(50).WithShowHelp(false)
			m.state = customersStateSearch
			m.table.Blur()

			return m, m.form.Init()
		case "enter":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.customers) {
				return m, nil
			}

			m.current = m.customers[idx]
			m.status = ""
			m.loading = true

			return m, m.loadStatementCmd(m.current)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m CustomersModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = customersStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = customersStateBrowse
	m.form = nil
	m.loading = true
	m.table.Focus()

	return m, m.loadCustomersCmd()
}

func (m CustomersModel) updateStatement(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = customersStateBrowse
			m.statement = nil
			m.status = ""
			m.ledger.Blur()
			m.table.Focus()

			return m, nil
		case "x":
			m.state = customersStateExporting
			return m, tea.Batch(m.spinner.Tick, m.exportCmd(m.current))
		}
	}

	var cmd tea.Cmd
	m.ledger, cmd = m.ledger.Update(msg)

	return m, cmd
}

func (m *CustomersModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.customers))
	for _, c := range m.customers {
		rows = append(rows, table.Row{c.Name, c.DocumentID, c.Phone, c.Email})
	}

	m.table.SetRows(rows)
}

func (m *CustomersModel) refreshLedger() {
	rows := make([]table.Row, 0, len(m.statement.Ledger.Entries))
	for _, e := range m.statement.Ledger.Entries {
		debit, credit := "", ""
		if e.Debit.IsPositive() {
			debit = FormatAmount(e.Debit)
		}

		if e.Credit.IsPositive() {
			credit = FormatAmount(e.Credit)
		}

		rows = append(rows, table.Row{
			FormatDate(e.Date),
			e.Description,
			debit,
			credit,
			FormatAmount(e.RunningBalance),
			e.ReceiptNumber,
		})
	}

	m.ledger.SetRows(rows)
	m.ledger.SetCursor(max(0, len(rows)-1))
}

func (m CustomersModel) View() string {
	if m.loading && m.customers == nil {
		return lipgloss.NewStyle().Padding(2).Render("Cargando clientes...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc para volver)")
	}

	var content string

	switch m.state {
	case customersStateStatement, customersStateExporting:
		content = m.viewStatement()
	default:
		header := "Clientes"
		if *m.search != "" {
			header += fmt.Sprintf(" | Búsqueda: %s", activeStyle(*m.search))
		}

		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingBottom(1).Render(header),
			tableBox(m.table),
			lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
		)

		if m.state == customersStateSearch && m.form != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle().Width(54).Render(m.form.View()))
		}
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m CustomersModel) viewStatement() string {
	st := m.statement
	if st == nil || m.current == nil {
		return ""
	}

	header := lipgloss.NewStyle().Bold(true).Render("Cuenta corriente de " + m.current.Name)

	totals := fmt.Sprintf(
		"Cargos: %s | Pagos: %s | Saldo: %s | Pendiente en cuotas: %s",
		FormatAmount(st.Ledger.TotalCharges),
		FormatAmount(st.Ledger.TotalPayments),
		activeStyle(FormatAmount(st.Ledger.CurrentBalance)),
		activeStyle(FormatAmount(st.Unpaid)),
	)

	footer := lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())
	if m.state == customersStateExporting {
		footer = m.spinner.View() + " Exportando cuenta corriente..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		tableBox(m.ledger),
		totals,
		"",
		m.exportSvc.GenerateEmailBody(st),
		footer,
	)
}

// Messages

type loadCustomersMsg struct {
	customers []*customer.Customer
	err       error
}

type loadStatementMsg struct {
	statement *balance.Statement
	err       error
}

type exportDoneMsg struct {
	path string
	err  error
}

func (m CustomersModel) loadCustomersCmd() tea.Cmd {
	search := *m.search

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cs, err := m.custSvc.List(ctx, customer.ListFilter{Search: search})

		return loadCustomersMsg{customers: cs, err: err}
	}
}

func (m CustomersModel) loadStatementCmd(c *customer.Customer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.balanceSvc.Statement(ctx, c.ID)

		return loadStatementMsg{statement: st, err: err}
	}
}

func (m CustomersModel) exportCmd(c *customer.Customer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		path, err := m.exportSvc.Export(ctx, c.ID, c.Name, m.outputDir, time.Now())

		return exportDoneMsg{path: path, err: err}
	}
}
