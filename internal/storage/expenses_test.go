package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

var noFilter = service.ExpenseFilter{}

func TestAddExpense_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	tests := []model.Expense{
		newExpense(t, "2024-03-01", "42.50", "Food", "Lunch"),
		newExpense(t, "1999-12-31", "0", "Other", ""),
		newExpense(t, "2024-02-29", "1234.567", "Rent", "Leap day, \"quoted\""),
	}

	for _, want := range tests {
		id, err := store.AddExpense(ctx, want)
		require.NoError(t, err)
		assert.Positive(t, id)

		got, err := store.GetExpense(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, want.DateString(), got.DateString())
		assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", got.Amount, want.Amount)
		assert.Equal(t, want.Category, got.Category)
		assert.Equal(t, want.Description, got.Description)
	}

	all, err := store.ListExpenses(ctx, noFilter)
	require.NoError(t, err)
	assert.Len(t, all, len(tests))
}

func TestAddExpense_IDsIncrease(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	first := mustAdd(t, store, newExpense(t, "2024-01-01", "1", "Food", "a"))
	second := mustAdd(t, store, newExpense(t, "2024-01-01", "1", "Food", "b"))
	_, err := store.DeleteExpense(context.Background(), second)
	require.NoError(t, err)
	third := mustAdd(t, store, newExpense(t, "2024-01-01", "1", "Food", "c"))

	assert.Greater(t, second, first)
	assert.Greater(t, third, second, "ids are never reused")
}

func TestAddExpense_Validation(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	tests := []struct {
		name    string
		expense model.Expense
		wantErr error
	}{
		{
			name:    "negative amount",
			expense: newExpense(t, "2024-01-01", "-5", "Food", ""),
			wantErr: ErrInvalidExpense,
		},
		{
			name:    "missing date",
			expense: model.Expense{Amount: decimal.NewFromInt(5), Category: "Food"},
			wantErr: ErrInvalidExpense,
		},
		{
			name:    "missing category",
			expense: newExpense(t, "2024-01-01", "5", "", ""),
			wantErr: ErrInvalidExpense,
		},
		{
			name:    "unknown category",
			expense: newExpense(t, "2024-01-01", "5", "Yachts", ""),
			wantErr: ErrUnknownCategory,
		},
		{
			name:    "amount beyond float range",
			expense: newExpense(t, "2024-01-01", "1e400", "Food", ""),
			wantErr: model.ErrAmountTooLarge,
		},
		{
			name:    "amount that would lose digits",
			expense: newExpense(t, "2024-01-01", "123456789.123456789", "Food", ""),
			wantErr: model.ErrAmountPrecision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddExpense(ctx, tt.expense)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	all, err := store.ListExpenses(ctx, noFilter)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateExpense_RejectsOverflow(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	expense := newExpense(t, "2024-01-01", "5", "Food", "")
	expense.ID = mustAdd(t, store, expense)

	expense.Amount = decimal.RequireFromString("1e400")
	err := store.UpdateExpense(ctx, expense)
	assert.ErrorIs(t, err, ErrInvalidExpense)

	got, err := store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", model.FormatAmount(got.Amount))
}

func TestReads_NonFiniteStoredAmount(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	mustAdd(t, store, newExpense(t, "2024-01-01", "5", "Food", "Fine"))

	// 9e999 overflows to Inf inside SQLite and passes the amount >= 0 check.
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO expenses (tx_date, amount, category, description) VALUES ('2024-01-02', 9e999, 'Food', 'Broken')`)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err := store.ListExpenses(ctx, noFilter)
		assert.ErrorIs(t, err, ErrCorruptAmount)

		total, err := store.Total(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrCorruptAmount)
		assert.True(t, total.IsZero(), "no partial sum on error")

		_, err = store.SummarizeByCategory(ctx, nil, nil)
		assert.ErrorIs(t, err, ErrCorruptAmount)
	})
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	id := mustAdd(t, store, newExpense(t, "2024-03-01", "42.50", "Food", "Lunch"))

	t.Run("replaces all fields", func(t *testing.T) {
		updated := newExpense(t, "2024-03-05", "17.25", "Transport", "Taxi")
		updated.ID = id
		require.NoError(t, store.UpdateExpense(ctx, updated))

		got, err := store.GetExpense(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-05", got.DateString())
		assert.Equal(t, "17.25", model.FormatAmount(got.Amount))
		assert.Equal(t, "Transport", got.Category)
		assert.Equal(t, "Taxi", got.Description)
	})

	t.Run("unknown id", func(t *testing.T) {
		missing := newExpense(t, "2024-03-05", "1", "Food", "")
		missing.ID = id + 100
		assert.ErrorIs(t, store.UpdateExpense(ctx, missing), ErrExpenseNotFound)
	})

	t.Run("missing id", func(t *testing.T) {
		noID := newExpense(t, "2024-03-05", "1", "Food", "")
		assert.ErrorIs(t, store.UpdateExpense(ctx, noID), ErrInvalidExpense)
	})

	t.Run("unknown category", func(t *testing.T) {
		bad := newExpense(t, "2024-03-05", "1", "Yachts", "")
		bad.ID = id
		assert.ErrorIs(t, store.UpdateExpense(ctx, bad), ErrUnknownCategory)
	})

	t.Run("negative amount", func(t *testing.T) {
		bad := newExpense(t, "2024-03-05", "-1", "Food", "")
		bad.ID = id
		assert.ErrorIs(t, store.UpdateExpense(ctx, bad), ErrInvalidExpense)
	})
}

func TestGetExpense_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	id := mustAdd(t, store, newExpense(t, "2024-03-01", "42.50", "Food", "Lunch"))

	got, err := store.GetExpense(ctx, id)
	require.NoError(t, err)
	got.Description = "changed locally"

	again, err := store.GetExpense(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", again.Description)

	_, err = store.GetExpense(ctx, id+1)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	id := mustAdd(t, store, newExpense(t, "2024-03-01", "42.50", "Food", "Lunch"))

	removed, err := store.DeleteExpense(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.DeleteExpense(ctx, id)
	require.NoError(t, err, "deleting twice is not an error")
	assert.False(t, removed)

	all, err := store.ListExpenses(ctx, noFilter)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// seedListingData stores a fixed dataset for filter tests.
func seedListingData(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	for _, e := range []model.Expense{
		newExpense(t, "2024-01-10", "12.00", "Food", "Team lunch"),
		newExpense(t, "2024-01-15", "60.00", "Transport", "Train tickets"),
		newExpense(t, "2024-01-15", "8.50", "Food", "Lunch special"),
		newExpense(t, "2024-02-01", "900.00", "Rent", "February rent"),
		newExpense(t, "2024-02-03", "4.20", "Food", "Café au lait"),
		newExpense(t, "2024-02-20", "35.00", "Entertainment", "Cinema"),
		newExpense(t, "2024-03-01", "20.00", "Food", "100% juice"),
	} {
		mustAdd(t, store, e)
	}
}

func descriptions(expenses []model.Expense) []string {
	out := make([]string, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.Description)
	}
	return out
}

func TestListExpenses_Filters(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()
	seedListingData(t, store)

	tests := []struct {
		name   string
		filter service.ExpenseFilter
		want   []string
	}{
		{
			name:   "no filter",
			filter: noFilter,
			want: []string{
				"100% juice", "Cinema", "Café au lait", "February rent",
				"Lunch special", "Train tickets", "Team lunch",
			},
		},
		{
			name:   "inclusive date range",
			filter: service.ExpenseFilter{StartDate: datePtr(t, "2024-01-15"), EndDate: datePtr(t, "2024-02-01")},
			want:   []string{"February rent", "Lunch special", "Train tickets"},
		},
		{
			name:   "start only",
			filter: service.ExpenseFilter{StartDate: datePtr(t, "2024-02-20")},
			want:   []string{"100% juice", "Cinema"},
		},
		{
			name:   "end only",
			filter: service.ExpenseFilter{EndDate: datePtr(t, "2024-01-10")},
			want:   []string{"Team lunch"},
		},
		{
			name:   "category",
			filter: service.ExpenseFilter{Category: "Food"},
			want:   []string{"100% juice", "Café au lait", "Lunch special", "Team lunch"},
		},
		{
			name:   "all categories sentinel",
			filter: service.ExpenseFilter{Category: model.AllCategories, EndDate: datePtr(t, "2024-01-10")},
			want:   []string{"Team lunch"},
		},
		{
			name:   "keyword is case-insensitive",
			filter: service.ExpenseFilter{Keyword: "LUNCH"},
			want:   []string{"Lunch special", "Team lunch"},
		},
		{
			name:   "keyword folds non-ascii",
			filter: service.ExpenseFilter{Keyword: "CAFÉ"},
			want:   []string{"Café au lait"},
		},
		{
			name:   "keyword wildcard characters are literal",
			filter: service.ExpenseFilter{Keyword: "%"},
			want:   []string{"100% juice"},
		},
		{
			name: "all filters conjunctive",
			filter: service.ExpenseFilter{
				StartDate: datePtr(t, "2024-01-11"),
				EndDate:   datePtr(t, "2024-02-28"),
				Category:  "Food",
				Keyword:   "lunch",
			},
			want: []string{"Lunch special"},
		},
		{
			name:   "no matches",
			filter: service.ExpenseFilter{Category: "Health"},
			want:   []string{},
		},
		{
			name:   "start after end",
			filter: service.ExpenseFilter{StartDate: datePtr(t, "2024-03-01"), EndDate: datePtr(t, "2024-01-01")},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListExpenses(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(got))
		})
	}
}

func TestListExpenses_DroppingAFilterGivesSuperset(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()
	seedListingData(t, store)

	full := service.ExpenseFilter{
		StartDate: datePtr(t, "2024-01-01"),
		EndDate:   datePtr(t, "2024-02-28"),
		Category:  "Food",
		Keyword:   "l",
	}
	narrow, err := store.ListExpenses(ctx, full)
	require.NoError(t, err)

	drops := map[string]func(service.ExpenseFilter) service.ExpenseFilter{
		"start":    func(f service.ExpenseFilter) service.ExpenseFilter { f.StartDate = nil; return f },
		"end":      func(f service.ExpenseFilter) service.ExpenseFilter { f.EndDate = nil; return f },
		"category": func(f service.ExpenseFilter) service.ExpenseFilter { f.Category = model.AllCategories; return f },
		"keyword":  func(f service.ExpenseFilter) service.ExpenseFilter { f.Keyword = ""; return f },
	}

	for name, drop := range drops {
		t.Run(name, func(t *testing.T) {
			wide, err := store.ListExpenses(ctx, drop(full))
			require.NoError(t, err)
			assert.Subset(t, descriptions(wide), descriptions(narrow))
			assert.GreaterOrEqual(t, len(wide), len(narrow))
		})
	}
}

func TestListExpenses_Ordering(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// Inserted out of date order on purpose.
	mustAdd(t, store, newExpense(t, "2024-01-02", "1", "Food", "b"))
	mustAdd(t, store, newExpense(t, "2024-01-03", "1", "Food", "c"))
	mustAdd(t, store, newExpense(t, "2024-01-01", "1", "Food", "a"))
	mustAdd(t, store, newExpense(t, "2024-01-02", "1", "Food", "b2"))

	got, err := store.ListExpenses(ctx, noFilter)
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.False(t, cur.Date.After(prev.Date), "dates must not increase")
		if cur.Date.Equal(prev.Date) {
			assert.Less(t, cur.ID, prev.ID, "same-date rows are newest id first")
		}
	}
	assert.Equal(t, []string{"c", "b2", "b", "a"}, descriptions(got))
}
