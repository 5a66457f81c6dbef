package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cuotas/internal/duestatus"
	"github.com/MrJamesThe3rd/cuotas/internal/installment"
	"github.com/MrJamesThe3rd/cuotas/internal/notify"
)

type boardState int

const (
	boardStateBrowse boardState = iota
	boardStatePay
	boardStateReschedule
	boardStateMessage
)

// boardGeneration tells the refresh ticks of one board apart from those of
// a board that was closed before its tick fired.
var boardGeneration int

type NotificationsModel struct {
	CommonModel
	dueSvc   *duestatus.Service
	instSvc  *installment.Service
	composer *notify.Composer

	pollInterval time.Duration
	now          func() time.Time
	generation   int

	state   boardState
	table   table.Model
	feed    *duestatus.Feed
	notices []duestatus.Notice

	form    *huh.Form
	pay     *paymentForm
	resched *rescheduleForm

	message   notify.Message
	loading   bool
	err       error
	status    string
	updatedAt time.Time
}

type paymentForm struct {
	amount string
	method installment.Method
	notes  string
}

type rescheduleForm struct {
	dueDate string
	fee     string
	reason  string
}

func NewNotificationsModel(
	dueSvc *duestatus.Service,
	instSvc *installment.Service,
	composer *notify.Composer,
	pollInterval time.Duration,
	now func() time.Time,
) NotificationsModel {
	boardGeneration++

	columns := []table.Column{
		{Title: "", Width: 1},
		{Title: "Estado", Width: 9},
		{Title: "Días", Width: 5},
		{Title: "Cliente", Width: 24},
		{Title: "Cuota", Width: 24},
		{Title: "Vence", Width: 10},
		{Title: "Resta", Width: 14},
		{Title: "Recargo sug.", Width: 14},
	}

	return NotificationsModel{
		dueSvc:       dueSvc,
		instSvc:      instSvc,
		composer:     composer,
		pollInterval: pollInterval,
		now:          now,
		generation:   boardGeneration,
		table:        newTable(columns, 15),
		loading:      true,
	}
}

func (m NotificationsModel) Title() string { return "Vencimientos" }

func (m NotificationsModel) ShortHelp() string {
	switch m.state {
	case boardStatePay, boardStateReschedule:
		return "Tab: siguiente campo | Enter: confirmar | Esc: cancelar"
	case boardStateMessage:
		return "Esc: volver"
	}

	return "Esc: menú | p: registrar pago | f: reprogramar | w: recordatorio | r: actualizar"
}

func (m NotificationsModel) Init() tea.Cmd {
	return tea.Batch(m.loadFeedCmd(), m.tickCmd())
}

func (m NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardTickMsg:
		if msg.generation != m.generation {
			return m, nil
		}

		return m, tea.Batch(m.loadFeedCmd(), m.tickCmd())

	case loadFeedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.feed = msg.feed
		m.updatedAt = msg.at
		m.refreshTable()

		return m, nil

	case paymentDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error al registrar el pago: %v", msg.err)
			m.leaveForm()

			return m, nil
		}

		m.status = fmt.Sprintf("Pago registrado. Recibo %s.", msg.result.ReceiptNumber)
		if msg.result.Overage.IsPositive() {
			m.status += fmt.Sprintf(" Excedente: %s.", FormatAmount(msg.result.Overage))
		}

		m.message = msg.receipt
		m.form = nil
		m.state = boardStateMessage

		return m, m.loadFeedCmd()

	case rescheduleDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error al reprogramar: %v", msg.err)
		} else {
			m.status = fmt.Sprintf("Cuota reprogramada al %s.", FormatDate(msg.inst.DueDate))
		}

		m.leaveForm()

		return m, m.loadFeedCmd()

	case reminderMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error al armar el recordatorio: %v", msg.err)
			return m, nil
		}

		m.message = msg.message
		m.state = boardStateMessage
		m.table.Blur()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil
	}

	switch m.state {
	case boardStateBrowse:
		return m.updateBrowse(msg)
	case boardStatePay, boardStateReschedule:
		return m.updateForm(msg)
	case boardStateMessage:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.leaveForm()
		}

		return m, nil
	}

	return m, nil
}

func (m NotificationsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadFeedCmd()
		case "p":
			return m.enterPayment()
		case "f":
			return m.enterReschedule()
		case "w":
			if n, ok := m.selected(); ok {
				return m, m.reminderCmd(n)
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m NotificationsModel) selected() (duestatus.Notice, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.notices) {
		return duestatus.Notice{}, false
	}

	return m.notices[idx], true
}

func (m NotificationsModel) enterPayment() (tea.Model, tea.Cmd) {
	n, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.pay = &paymentForm{
		amount: n.Remaining.StringFixed(2),
		method: installment.MethodCash,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Importe").
				Value(&m.pay.amount).
				Validate(validateAmount),
			huh.NewSelect[installment.Method]().
				Key("method").
				Title("Medio de pago").
				Options(
					huh.NewOption("Efectivo", installment.MethodCash),
					huh.NewOption("Transferencia", installment.MethodTransfer),
					huh.NewOption("Tarjeta", installment.MethodCard),
					huh.NewOption("Otro", installment.MethodOther),
				).
				Value(&m.pay.method),
			huh.NewInput().
				Key("notes").
				Title("Notas").
				Value(&m.pay.notes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = boardStatePay
	m.table.Blur()

	return m, m.form.Init()
}

func (m NotificationsModel) enterReschedule() (tea.Model, tea.Cmd) {
	n, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.resched = &rescheduleForm{
		dueDate: FormatDate(m.now().AddDate(0, 0, 30)),
		fee:     n.SuggestedFee.StringFixed(2),
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("due_date").
				Title("Nuevo vencimiento").
				Placeholder("DD/MM/AAAA").
				Value(&m.resched.dueDate).
				Validate(func(s string) error {
					_, err := ParseDate(s)
					return err
				}),
			huh.NewInput().
				Key("fee").
				Title("Recargo").
				Description(fmt.Sprintf("Sugerido: %s (%d días)", FormatAmount(n.SuggestedFee), n.DaysFromToday)).
				Value(&m.resched.fee).
				Validate(func(s string) error {
					d, err := ParseAmount(s)
					if err != nil {
						return err
					}

					if d.IsNegative() {
						return fmt.Errorf("el recargo no puede ser negativo")
					}

					return nil
				}),
			huh.NewInput().
				Key("reason").
				Title("Motivo").
				Value(&m.resched.reason),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = boardStateReschedule
	m.table.Blur()

	return m, m.form.Init()
}

func validateAmount(s string) error {
	d, err := ParseAmount(s)
	if err != nil {
		return err
	}

	if !d.IsPositive() {
		return fmt.Errorf("el importe debe ser mayor a cero")
	}

	return nil
}

func (m NotificationsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.leaveForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	n, ok := m.selected()
	if !ok {
		m.leaveForm()
		return m, nil
	}

	if m.state == boardStatePay {
		return m, m.paymentCmd(n, *m.pay)
	}

	return m, m.rescheduleCmd(n, *m.resched)
}

func (m *NotificationsModel) leaveForm() {
	m.state = boardStateBrowse
	m.form = nil
	m.pay = nil
	m.resched = nil
	m.table.Focus()
}

func (m *NotificationsModel) refreshTable() {
	m.notices = make([]duestatus.Notice, 0, m.feed.Len())
	m.notices = append(m.notices, m.feed.Overdue...)
	m.notices = append(m.notices, m.feed.DueToday...)
	m.notices = append(m.notices, m.feed.Upcoming...)

	rows := make([]table.Row, 0, len(m.notices))
	for _, n := range m.notices {
		mark := ""
		if n.Highlight {
			mark = "●"
		}

		rows = append(rows, table.Row{
			mark,
			bucketLabel(n.Bucket),
			fmt.Sprintf("%d", n.DaysFromToday),
			n.CustomerName,
			noticeLabel(n),
			FormatDate(n.Installment.DueDate),
			FormatAmount(n.Remaining),
			FormatAmount(n.SuggestedFee),
		})
	}

	m.table.SetRows(rows)
}

func bucketLabel(b duestatus.Bucket) string {
	switch b {
	case duestatus.BucketOverdue:
		return "Vencida"
	case duestatus.BucketDueToday:
		return "Hoy"
	default:
		return "Próxima"
	}
}

func noticeLabel(n duestatus.Notice) string {
	label := n.TransactionDescription
	if label == "" {
		label = "Venta"
		if n.TransactionKind == "loan" {
			label = "Préstamo"
		}
	}

	return fmt.Sprintf("%d/%d %s", n.Installment.SequenceNumber, n.InstallmentCount, label)
}

func (m NotificationsModel) View() string {
	if m.loading && m.feed == nil {
		return lipgloss.NewStyle().Padding(2).Render("Cargando vencimientos...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc para volver)")
	}

	if m.feed == nil {
		return ""
	}

	header := fmt.Sprintf(
		"Vencidas: %s | Hoy: %s | Próximos %d días: %s | Saldo pendiente: %s | Actualizado %s",
		activeStyle(fmt.Sprintf("%d", len(m.feed.Overdue))),
		activeStyle(fmt.Sprintf("%d", len(m.feed.DueToday))),
		m.feed.Horizon,
		activeStyle(fmt.Sprintf("%d", len(m.feed.Upcoming))),
		activeStyle(FormatAmount(m.feed.Unpaid)),
		m.updatedAt.Format("15:04"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableBox(m.table),
		lipgloss.NewStyle().Faint(true).Render(m.ShortHelp()),
	)

	switch m.state {
	case boardStatePay, boardStateReschedule:
		title := "Registrar pago"
		if m.state == boardStateReschedule {
			title = "Reprogramar cuota"
		}

		if n, ok := m.selected(); ok && m.form != nil {
			panel := panelStyle().Width(50).Render(fmt.Sprintf("%s\n\n%s\n%s\nResta %s\n\n%s",
				title, n.CustomerName, noticeLabel(n), FormatAmount(n.Remaining), m.form.View()))
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
		}
	case boardStateMessage:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle().Width(60).Render(messageView(m.message)))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func messageView(msg notify.Message) string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(msg.Subject))
	sb.WriteString("\n\n")
	sb.WriteString(msg.Text)

	if msg.WhatsAppURL != "" {
		sb.WriteString("\nWhatsApp: ")
		sb.WriteString(msg.WhatsAppURL)
	}

	if msg.MailtoURL != "" {
		sb.WriteString("\nEmail: ")
		sb.WriteString(msg.MailtoURL)
	}

	return sb.String()
}

// Messages

type boardTickMsg struct {
	generation int
}

type loadFeedMsg struct {
	feed *duestatus.Feed
	at   time.Time
	err  error
}

type paymentDoneMsg struct {
	result  *installment.PaymentResult
	receipt notify.Message
	err     error
}

type rescheduleDoneMsg struct {
	inst *installment.Installment
	err  error
}

type reminderMsg struct {
	message notify.Message
	err     error
}

func (m NotificationsModel) tickCmd() tea.Cmd {
	generation := m.generation

	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return boardTickMsg{generation: generation}
	})
}

func (m NotificationsModel) loadFeedCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		now := m.now()

		feed, err := m.dueSvc.Feed(ctx, now, duestatus.FeedHorizonDays)

		return loadFeedMsg{feed: feed, at: now, err: err}
	}
}

func (m NotificationsModel) paymentCmd(n duestatus.Notice, form paymentForm) tea.Cmd {
	return func() tea.Msg {
		amount, err := ParseAmount(form.amount)
		if err != nil {
			return paymentDoneMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.instSvc.RegisterPayment(ctx, n.Installment.ID, installment.PaymentParams{
			Amount: amount,
			Date:   m.now(),
			Method: form.method,
			Notes:  form.notes,
		})
		if err != nil {
			return paymentDoneMsg{err: err}
		}

		receipt := m.composer.Receipt(contactOf(n.Item), n.TransactionDescription, res)

		return paymentDoneMsg{result: res, receipt: receipt}
	}
}

func (m NotificationsModel) rescheduleCmd(n duestatus.Notice, form rescheduleForm) tea.Cmd {
	return func() tea.Msg {
		dueDate, err := ParseDate(form.dueDate)
		if err != nil {
			return rescheduleDoneMsg{err: err}
		}

		fee, err := ParseAmount(form.fee)
		if err != nil {
			return rescheduleDoneMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		inst, err := m.instSvc.Reschedule(ctx, n.Installment.ID, installment.RescheduleParams{
			NewDueDate: dueDate,
			LateFee:    fee,
			Reason:     form.reason,
		})

		return rescheduleDoneMsg{inst: inst, err: err}
	}
}

func (m NotificationsModel) reminderCmd(n duestatus.Notice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		feed, err := m.dueSvc.ForCustomer(ctx, n.CustomerID, m.now())
		if err != nil {
			return reminderMsg{err: err}
		}

		return reminderMsg{message: m.composer.Reminder(contactOf(n.Item), feed)}
	}
}

func contactOf(it duestatus.Item) notify.Contact {
	return notify.Contact{Name: it.CustomerName, Phone: it.CustomerPhone, Email: it.CustomerEmail}
}
