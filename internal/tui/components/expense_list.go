// Package components contains the widgets of the expense browser.
package components

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/tui/themes"
)

// Fixed column widths; the description takes the rest.
const (
	idWidth       = 6
	dateWidth     = 10
	amountWidth   = 12
	categoryWidth = 18
	minDescWidth  = 12
	// cell padding plus the selection margin
	columnOverhead = 12
)

// ExpenseListModel shows expenses in a scrollable table.
type ExpenseListModel struct {
	theme    themes.Theme
	expenses []model.Expense
	table    table.Model
	width    int
	height   int
}

// NewExpenseList creates an empty expense list.
func NewExpenseList(theme themes.Theme) ExpenseListModel {
	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	// Apply theme
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = theme.Selected
	t.SetStyles(s)

	return ExpenseListModel{
		theme:  theme,
		table:  t,
		width:  80,
		height: 24,
	}
}

func columnsFor(width int) []table.Column {
	desc := width - idWidth - dateWidth - amountWidth - categoryWidth - columnOverhead
	if desc < minDescWidth {
		desc = minDescWidth
	}
	return []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Date", Width: dateWidth},
		{Title: "Amount", Width: amountWidth},
		{Title: "Category", Width: categoryWidth},
		{Title: "Description", Width: desc},
	}
}

// SetExpenses replaces the rows, keeping the cursor within range.
func (m *ExpenseListModel) SetExpenses(expenses []model.Expense) {
	m.expenses = expenses

	rows := make([]table.Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.DateString(),
			model.DisplayAmount(e.Amount),
			themes.GetCategoryIcon(e.Category) + " " + e.Category,
			e.Description,
		})
	}
	m.table.SetRows(rows)

	if cursor := m.table.Cursor(); cursor >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Expenses returns the rows currently shown.
func (m ExpenseListModel) Expenses() []model.Expense {
	return m.expenses
}

// Selected returns the expense under the cursor.
func (m ExpenseListModel) Selected() (model.Expense, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.expenses) {
		return model.Expense{}, false
	}
	return m.expenses[cursor], true
}

// Cursor returns the index of the highlighted row.
func (m ExpenseListModel) Cursor() int {
	return m.table.Cursor()
}

// Resize fits the table into the given area.
func (m *ExpenseListModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columnsFor(width))
	m.table.SetHeight(max(height, 3))
}

// Update handles navigation messages.
func (m ExpenseListModel) Update(msg tea.Msg) (ExpenseListModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the expense list.
func (m ExpenseListModel) View() string {
	if len(m.expenses) == 0 {
		return m.theme.Subtitle.Render("No expenses match the current filters.")
	}
	return m.table.View()
}
