package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

const expenseColumns = `id, tx_date, amount, category, description`

// AddExpense inserts an expense and returns its assigned ID.
func (s *SQLiteStorage) AddExpense(ctx context.Context, expense model.Expense) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateExpense(&expense); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (tx_date, amount, category, description)
		VALUES (?, ?, ?, ?)`,
		model.FormatDate(expense.Date), expense.Amount, expense.Category, expense.Description,
	)
	if err != nil {
		return 0, translateExpenseWriteError(err, expense)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get expense ID: %w", err)
	}

	slog.Debug("added expense",
		"id", id,
		"date", model.FormatDate(expense.Date),
		"amount", expense.Amount.String(),
		"category", expense.Category)
	return id, nil
}

// GetExpense returns a single expense by ID.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id int64) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: id %d", ErrExpenseNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense replaces every field of the expense with the matching ID.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if expense.ID <= 0 {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if err := validateExpense(&expense); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET tx_date = ?, amount = ?, category = ?, description = ?
		WHERE id = ?`,
		model.FormatDate(expense.Date), expense.Amount, expense.Category, expense.Description, expense.ID,
	)
	if err != nil {
		return translateExpenseWriteError(err, expense)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrExpenseNotFound, expense.ID)
	}

	slog.Debug("updated expense", "id", expense.ID)
	return nil
}

// DeleteExpense removes an expense. Deleting an unknown ID is not an error;
// the returned flag reports whether a row was removed.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Debug("deleted expense", "id", id, "removed", rowsAffected > 0)
	return rowsAffected > 0, nil
}

// ListExpenses returns the expenses matching every filter that is set,
// newest date first and, within a date, newest ID first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := dateRangeClause(filter.StartDate, filter.EndDate)

	if !model.IsAllCategories(filter.Category) {
		where += ` AND category = ?`
		args = append(args, filter.Category)
	}

	if filter.Keyword != "" {
		where += ` AND instr(fold(description), ?) > 0`
		args = append(args, strings.ToLower(filter.Keyword))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE 1=1` + where +
		` ORDER BY date(tx_date) DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := make([]model.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	slog.Debug("listed expenses", "count", len(expenses))
	return expenses, nil
}

// dateRangeClause builds the inclusive calendar-date conditions shared by
// listings and summaries.
func dateRangeClause(start, end *time.Time) (string, []any) {
	var (
		where string
		args  []any
	)
	if start != nil {
		where += ` AND date(tx_date) >= date(?)`
		args = append(args, model.FormatDate(*start))
	}
	if end != nil {
		where += ` AND date(tx_date) <= date(?)`
		args = append(args, model.FormatDate(*end))
	}
	return where, args
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// storedAmount reads an amount column. Unlike scanning straight into a
// decimal it returns an error for NULL or non-finite values.
type storedAmount struct {
	decimal.Decimal
}

func (a *storedAmount) Scan(value any) error {
	var f sql.NullFloat64
	if err := f.Scan(value); err != nil {
		return err
	}
	if !f.Valid {
		return fmt.Errorf("%w: NULL", ErrCorruptAmount)
	}
	if math.IsInf(f.Float64, 0) || math.IsNaN(f.Float64) {
		return fmt.Errorf("%w: %v", ErrCorruptAmount, f.Float64)
	}
	a.Decimal = decimal.NewFromFloat(f.Float64)
	return nil
}

func scanExpense(row rowScanner) (model.Expense, error) {
	var (
		expense model.Expense
		txDate  string
		amount  storedAmount
	)
	err := row.Scan(&expense.ID, &txDate, &amount, &expense.Category, &expense.Description)
	if err == sql.ErrNoRows {
		return model.Expense{}, err
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("failed to scan expense: %w", err)
	}
	expense.Amount = amount.Decimal

	expense.Date, err = model.ParseDate(txDate)
	if err != nil {
		return model.Expense{}, fmt.Errorf("expense %d has a corrupt date: %w", expense.ID, err)
	}
	return expense, nil
}

func translateExpenseWriteError(err error, expense model.Expense) error {
	switch {
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", ErrUnknownCategory, expense.Category)
	case isCheckViolation(err):
		return fmt.Errorf("%w: %w", ErrInvalidExpense, model.ErrNegativeAmount)
	default:
		return fmt.Errorf("failed to save expense: %w", err)
	}
}
