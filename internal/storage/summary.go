package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// SummarizeByCategory returns the per-category totals of expenses in the
// date range, largest total first. Equal totals are ordered by name.
//
// Sums are accumulated as decimals, not with SQL SUM over REAL values.
func (s *SQLiteStorage) SummarizeByCategory(ctx context.Context, start, end *time.Time) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := dateRangeClause(start, end)

	rows, err := s.db.QueryContext(ctx, `SELECT category, amount FROM expenses WHERE 1=1`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			amount   storedAmount
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		totals[category] = totals[category].Add(amount.Decimal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}

	summary := make([]model.CategoryTotal, 0, len(totals))
	for category, total := range totals {
		summary = append(summary, model.CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(summary, func(i, j int) bool {
		if c := summary[i].Total.Cmp(summary[j].Total); c != 0 {
			return c > 0
		}
		return summary[i].Category < summary[j].Category
	})

	return summary, nil
}

// Total returns the sum of expense amounts in the date range, zero when
// nothing matches.
func (s *SQLiteStorage) Total(ctx context.Context, start, end *time.Time) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	where, args := dateRangeClause(start, end)

	rows, err := s.db.QueryContext(ctx, `SELECT amount FROM expenses WHERE 1=1`+where, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query total: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := decimal.Zero
	for rows.Next() {
		var amount storedAmount
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		total = total.Add(amount.Decimal)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amounts: %w", err)
	}
	return total, nil
}
