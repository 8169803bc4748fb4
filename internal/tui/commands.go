package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

const queryTimeout = 10 * time.Second

// expensesLoadedMsg carries the result of a listing query.
type expensesLoadedMsg struct {
	err        error
	expenses   []model.Expense
	categories []string
}

// expenseDeletedMsg reports the outcome of a delete.
type expenseDeletedMsg struct {
	err     error
	id      int64
	removed bool
}

// loadExpenses queries the expenses matching filter together with the
// category list used for cycling.
func loadExpenses(ctx context.Context, store service.Storage, filter service.ExpenseFilter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		expenses, err := store.ListExpenses(ctx, filter)
		if err != nil {
			return expensesLoadedMsg{err: err}
		}

		categories, err := store.GetCategories(ctx)
		if err != nil {
			return expensesLoadedMsg{err: err}
		}

		return expensesLoadedMsg{expenses: expenses, categories: categories}
	}
}

// deleteExpense removes one expense.
func deleteExpense(ctx context.Context, store service.Storage, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()

		removed, err := store.DeleteExpense(ctx, id)
		return expenseDeletedMsg{id: id, removed: removed, err: err}
	}
}
