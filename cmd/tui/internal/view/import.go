package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateDuplicates
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state      importState
	filePicker filepicker.Model

	newParams     []customer.CreateParams
	duplicates    []importer.Duplicate
	duplicateList list.Model
	selected      map[int]bool

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Importar clientes" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateDuplicates {
		return "Espacio: marcar | a: todos | n: ninguno | Enter: confirmar | Esc: cancelar"
	}

	return "Esc: volver | Enter: elegir"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateDuplicates {
			return m.updateDuplicates(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Duplicates) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Se importaron %d clientes.", len(msg.result.Created))

			return m, nil
		}

		m.newParams = msg.result.New
		m.duplicates = msg.result.Duplicates
		m.selected = make(map[int]bool)
		m.state = importStateDuplicates

		items := make([]list.Item, len(m.duplicates))
		for i, d := range m.duplicates {
			items[i] = duplicateItem{duplicate: d, index: i}
		}

		delegate := duplicateDelegate{selected: &m.selected}
		m.duplicateList = list.New(items, delegate, 80, 20)
		m.duplicateList.Title = fmt.Sprintf("Posibles duplicados (%d nuevos se importan igual)", len(m.newParams))
		m.duplicateList.SetShowStatusBar(false)
		m.duplicateList.SetFilteringEnabled(false)
		m.duplicateList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Se importaron %d clientes.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importando %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateDuplicates:
		m.state = importStateFilePick
		m.duplicates = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) updateDuplicates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.duplicateList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.duplicates {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.duplicates {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.duplicateList, cmd = m.duplicateList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Elegí el archivo CSV de clientes:\n\n%s", m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateDuplicates:
		return lipgloss.NewStyle().Padding(1).Render(m.duplicateList.View() + "\n" + m.ShortHelp())
	case importStateResult:
		status := successStyle(m.status)
		if m.err != nil {
			status = errorStyle(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Esc para volver)")
	}

	return ""
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

// confirmCmd imports the new rows plus the duplicates marked to keep.
func (m ImportModel) confirmCmd() tea.Cmd {
	params := append([]customer.CreateParams(nil), m.newParams...)
	for i, d := range m.duplicates {
		if m.selected[i] {
			params = append(params, d.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		created, err := m.importService.Confirm(ctx, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(created)}
	}
}

type duplicateItem struct {
	duplicate importer.Duplicate
	index     int
}

func (i duplicateItem) Title() string       { return i.duplicate.Incoming.Name }
func (i duplicateItem) Description() string { return i.duplicate.Existing.Name }
func (i duplicateItem) FilterValue() string { return i.duplicate.Incoming.Name }

type duplicateDelegate struct {
	selected *map[int]bool
}

func (d duplicateDelegate) Height() int                             { return 3 }
func (d duplicateDelegate) Spacing() int                            { return 0 }
func (d duplicateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d duplicateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(duplicateItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.duplicate.Incoming
	existing := item.duplicate.Existing

	fmt.Fprintf(w, "%s%s %s  %s  %s\n      Existente: %s  %s  %s\n",
		cursor, checkbox,
		incoming.Name, incoming.DocumentID, incoming.Phone,
		existing.Name, existing.DocumentID, existing.Phone,
	)
}
