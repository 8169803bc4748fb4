package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// Column indexes that hold money.
const (
	expenseAmountColumn = 2
	summaryAmountColumn = 1
)

func newTable(amountColumn int) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				style = TableHeaderStyle
			}
			if col == amountColumn {
				style = style.Inherit(AmountStyle)
			}
			return style
		})
}

// RenderExpenses renders expenses as a table with a total line.
func RenderExpenses(expenses []model.Expense) string {
	t := newTable(expenseAmountColumn).Headers("ID", "Date", "Amount", "Category", "Description")

	total := decimal.Zero
	for _, e := range expenses {
		t.Row(
			strconv.FormatInt(e.ID, 10),
			e.DateString(),
			model.DisplayAmount(e.Amount),
			e.Category,
			e.Description,
		)
		total = total.Add(e.Amount)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.String(),
		RenderTotal(len(expenses), total),
	)
}

// RenderSummary renders per-category totals followed by the grand total.
func RenderSummary(rows []model.CategoryTotal, total decimal.Decimal) string {
	t := newTable(summaryAmountColumn).Headers("Category", "Total")

	for _, row := range rows {
		t.Row(row.Category, model.DisplayAmount(row.Total))
	}
	t.Row(BoldStyle.Render("Total"), BoldStyle.Render(model.DisplayAmount(total)))

	return t.String()
}

// RenderTotal renders the one-line footer used under listings.
func RenderTotal(count int, total decimal.Decimal) string {
	noun := "expenses"
	if count == 1 {
		noun = "expense"
	}
	return SubtleStyle.Render(strconv.Itoa(count)+" "+noun+", total ") +
		BoldStyle.Render(model.DisplayAmount(total))
}
