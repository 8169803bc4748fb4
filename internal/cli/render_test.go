package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-tracker/internal/model"
)

func TestRenderExpenses(t *testing.T) {
	date, err := model.ParseDate("2024-03-01")
	require.NoError(t, err)

	out := RenderExpenses([]model.Expense{
		{ID: 7, Date: date, Amount: decimal.RequireFromString("1234.5"), Category: "Rent", Description: "March"},
		{ID: 8, Date: date, Amount: decimal.RequireFromString("15"), Category: "Food", Description: "Pizza"},
	})

	for _, want := range []string{"ID", "Description", "2024-03-01", "$1,234.50", "$15.00", "Rent", "Pizza", "2 expenses", "$1,249.50"} {
		assert.Contains(t, out, want)
	}
	assert.Regexp(t, `│ +\$15\.00`, out, "amounts are right aligned")
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary([]model.CategoryTotal{
		{Category: "Rent", Total: decimal.RequireFromString("900")},
		{Category: "Food", Total: decimal.RequireFromString("44.7")},
	}, decimal.RequireFromString("944.7"))

	for _, want := range []string{"Category", "Rent", "$900.00", "Food", "$44.70", "Total", "$944.70"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Spending by category", "Rent  $900.00")

	assert.Contains(t, out, LedgerIcon+" Spending by category")
	assert.Contains(t, out, "Rent  $900.00")
	assert.Contains(t, out, "╭", "rounded border")
	assert.Less(t, strings.Index(out, "Spending by category"), strings.Index(out, "Rent"))
}

func TestRenderTotal(t *testing.T) {
	assert.Contains(t, RenderTotal(1, decimal.NewFromInt(3)), "1 expense, total")
	assert.Contains(t, RenderTotal(0, decimal.Zero), "$0.00")
}
