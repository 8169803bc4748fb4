package exchange

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

// ImportExpenses stores already parsed expenses, creating missing
// categories first. Invalid expenses are skipped.
func ImportExpenses(ctx context.Context, store service.ExpenseWriter, expenses []model.Expense, opts ImportOptions) (ImportResult, error) {
	var result ImportResult

	for _, expense := range expenses {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if expense.Category == "" {
			expense.Category = fallbackCategory(opts.DefaultCategory)
		}

		if err := expense.Validate(); err != nil {
			slog.Debug("Skipping invalid expense", "description", expense.Description, "error", err)
			result.Skipped++
			tick(opts.Progress)
			continue
		}

		if _, err := storeExpense(ctx, store, expense); err != nil {
			return result, err
		}
		result.Imported++
		tick(opts.Progress)
	}

	slog.Info("Imported expenses", "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

func storeExpense(ctx context.Context, store service.ExpenseWriter, expense model.Expense) (int64, error) {
	if err := store.AddCategory(ctx, expense.Category); err != nil {
		return 0, fmt.Errorf("failed to add category %q: %w", expense.Category, err)
	}

	id, err := store.AddExpense(ctx, expense)
	if err != nil {
		return 0, fmt.Errorf("failed to store expense: %w", err)
	}
	return id, nil
}
