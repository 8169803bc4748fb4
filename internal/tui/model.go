// Package tui implements the interactive expense browser.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
	"github.com/Veraticus/expense-tracker/internal/tui/components"
	"github.com/Veraticus/expense-tracker/internal/tui/themes"
)

// State represents the current state of the TUI.
type State int

const (
	StateList State = iota
	StateSearch
	StateConfirmDelete
)

// Config configures the browser.
type Config struct {
	Context context.Context
	Storage service.Storage
	Theme   themes.Theme
	Filter  service.ExpenseFilter
	Width   int
	Height  int
}

// Model holds the main TUI state.
type Model struct {
	ctx           context.Context
	storage       service.Storage
	lastError     error
	theme         themes.Theme
	filter        service.ExpenseFilter
	status        string
	categories    []string
	list          components.ExpenseListModel
	searchInput   textinput.Model
	help          help.Model
	keymap        KeyMap
	total         decimal.Decimal
	pendingDelete model.Expense
	width         int
	height        int
	state         State
	quitting      bool
	ready         bool
}

// New creates a browser model.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	theme := cfg.Theme
	if theme.Primary == "" {
		theme = themes.Default
	}

	searchInput := textinput.New()
	searchInput.Placeholder = "Search descriptions..."
	searchInput.CharLimit = 100
	searchInput.Prompt = "/ "
	_ = searchInput.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:         ctx,
		storage:     cfg.Storage,
		theme:       theme,
		filter:      cfg.Filter,
		list:        components.NewExpenseList(theme),
		searchInput: searchInput,
		help:        help.New(),
		keymap:      DefaultKeyMap(),
		total:       decimal.Zero,
		state:       StateList,
		width:       cfg.Width,
		height:      cfg.Height,
	}
	if m.width > 0 && m.height > 0 {
		m.handleResize()
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.reload()
}

func (m Model) reload() tea.Cmd {
	return loadExpenses(m.ctx, m.storage, m.filter)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case expensesLoadedMsg:
		m.ready = true
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.categories = msg.categories
		m.list.SetExpenses(msg.expenses)
		m.total = decimal.Zero
		for _, e := range msg.expenses {
			m.total = m.total.Add(e.Amount)
		}
		return m, nil

	case expenseDeletedMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		if msg.removed {
			m.status = fmt.Sprintf("Deleted expense %d", msg.id)
		} else {
			m.status = fmt.Sprintf("Expense %d was already gone", msg.id)
		}
		return m, m.reload()

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.state {
		case StateSearch:
			return m.updateSearch(msg)
		case StateConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keymap.Search):
		m.state = StateSearch
		m.searchInput.SetValue(m.filter.Keyword)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keymap.Category):
		m.filter.Category = m.nextCategory()
		m.status = ""
		return m, m.reload()

	case key.Matches(msg, m.keymap.Refresh):
		m.status = ""
		return m, m.reload()

	case key.Matches(msg, m.keymap.Delete):
		expense, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = expense
		m.state = StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filter.Keyword = m.searchInput.Value()
		m.state = StateList
		m.searchInput.Blur()
		return m, m.reload()

	case tea.KeyEsc:
		m.state = StateList
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		m.state = StateList
		return m, deleteExpense(m.ctx, m.storage, m.pendingDelete.ID)

	case key.Matches(msg, m.keymap.Cancel):
		m.state = StateList
		m.status = "Delete canceled"
		return m, nil
	}
	return m, nil
}

// nextCategory cycles All -> each category -> All.
func (m Model) nextCategory() string {
	if model.IsAllCategories(m.filter.Category) {
		if len(m.categories) == 0 {
			return model.AllCategories
		}
		return m.categories[0]
	}
	for i, c := range m.categories {
		if c == m.filter.Category && i+1 < len(m.categories) {
			return m.categories[i+1]
		}
	}
	return model.AllCategories
}

// handleResize adjusts component sizes when terminal resizes.
func (m *Model) handleResize() {
	// title, filter line, footer, status and help
	const chrome = 8
	m.list.Resize(m.width, m.height-chrome)
	m.help.Width = m.width
}

// Filter returns the active filter.
func (m Model) Filter() service.ExpenseFilter {
	return m.filter
}

// Total returns the sum of the listed expenses.
func (m Model) Total() decimal.Decimal {
	return m.total
}

// Expenses returns the listed expenses.
func (m Model) Expenses() []model.Expense {
	return m.list.Expenses()
}

// State returns the interaction state.
func (m Model) State() State {
	return m.state
}
