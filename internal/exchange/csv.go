// Package exchange moves expenses in and out of the ledger as CSV files.
package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

// Column names of the CSV format.
const (
	ColumnID          = "id"
	ColumnDate        = "date"
	ColumnAmount      = "amount"
	ColumnCategory    = "category"
	ColumnDescription = "description"
)

// Header is the first record of every exported file.
var Header = []string{ColumnID, ColumnDate, ColumnAmount, ColumnCategory, ColumnDescription}

// ErrMissingHeader is returned when an import file has no header record.
var ErrMissingHeader = errors.New("csv file has no header")

// Progress receives one tick per processed row.
type Progress interface {
	Add(n int) error
}

// ImportOptions controls an import.
type ImportOptions struct {
	// Progress is optional.
	Progress Progress
	// DefaultCategory replaces a blank or missing category. Defaults to model.DefaultCategory.
	DefaultCategory string
}

// ImportResult reports how many rows were stored and how many were skipped.
type ImportResult struct {
	Imported int
	Skipped  int
}

// WriteCSV writes the header followed by one record per expense.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, e := range expenses {
		id := ""
		if e.ID != 0 {
			id = strconv.FormatInt(e.ID, 10)
		}
		record := []string{id, e.DateString(), model.FormatAmount(e.Amount), e.Category, e.Description}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write expense %d: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ImportCSV reads expenses from r and stores them. Columns are addressed
// by header name, so their order does not matter and extra columns such
// as id are ignored. Rows that cannot be parsed or fail validation are
// skipped; storage failures stop the import.
func ImportCSV(ctx context.Context, r io.Reader, store service.ExpenseWriter, opts ImportOptions) (ImportResult, error) {
	var result ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return result, ErrMissingHeader
	}
	if err != nil {
		return result, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				slog.Debug("Skipping malformed csv line", "line", parseErr.Line, "error", err)
				result.Skipped++
				tick(opts.Progress)
				continue
			}
			return result, fmt.Errorf("failed to read csv: %w", err)
		}

		expense, err := parseRecord(
			field(record, ColumnDate),
			field(record, ColumnAmount),
			field(record, ColumnCategory),
			field(record, ColumnDescription),
			opts.DefaultCategory,
		)
		if err != nil {
			slog.Debug("Skipping csv row", "error", err)
			result.Skipped++
			tick(opts.Progress)
			continue
		}

		if err := expense.Validate(); err != nil {
			slog.Debug("Skipping invalid csv row", "error", err)
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

	slog.Info("Imported expenses from csv", "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

func parseRecord(date, amount, category, description, defaultCategory string) (model.Expense, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Expense{}, err
	}

	a, err := model.ParseAmount(amount)
	if err != nil {
		return model.Expense{}, err
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = fallbackCategory(defaultCategory)
	}

	return model.Expense{
		Date:        d,
		Amount:      a,
		Category:    category,
		Description: strings.TrimSpace(description),
	}, nil
}

func fallbackCategory(configured string) string {
	if c := strings.TrimSpace(configured); c != "" {
		return c
	}
	return model.DefaultCategory
}

func tick(p Progress) {
	if p != nil {
		_ = p.Add(1)
	}
}
