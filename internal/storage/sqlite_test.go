package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// Helper function to create test storage with the default categories.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create migrated storage without seeding.
func createEmptyStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	d := mustDate(t, s)
	return &d
}

func newExpense(t *testing.T, date, amount, category, description string) model.Expense {
	t.Helper()
	return model.Expense{
		Date:        mustDate(t, date),
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
	}
}

func mustAdd(t *testing.T, s *SQLiteStorage, e model.Expense) int64 {
	t.Helper()
	id, err := s.AddExpense(context.Background(), e)
	require.NoError(t, err)
	return id
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("empty path rejected", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})

	t.Run("creates missing directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "ledger.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, dbPath, store.Path())
		assert.FileExists(t, dbPath)
	})
}

func TestSQLiteStorage_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	enabled, err := store.ForeignKeysEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestOpen_AdoptsUnversionedLedger(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "legacy.sqlite3")

	// A ledger written before schema versioning existed.
	raw, err := sql.Open(driverName, dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE categories (name TEXT PRIMARY KEY)`,
		`CREATE TABLE expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_date TEXT NOT NULL,
			amount REAL NOT NULL CHECK(amount >= 0),
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(category) REFERENCES categories(name) ON UPDATE CASCADE ON DELETE RESTRICT
		)`,
		`INSERT INTO categories(name) VALUES ('Travel')`,
		`INSERT INTO expenses(tx_date, amount, category, description) VALUES ('2023-12-24', 99.9, 'Travel', 'Train')`,
	} {
		_, err := raw.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// The existing custom category prevents seeding.
	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel"}, categories)

	expenses, err := store.ListExpenses(ctx, noFilter)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "2023-12-24", expenses[0].DateString())
	assert.True(t, expenses[0].Amount.Equal(decimal.RequireFromString("99.9")))
	assert.Equal(t, "Train", expenses[0].Description)
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	mustAdd(t, store, newExpense(t, "2024-03-01", "42.50", "Food", "Lunch"))
	mustAdd(t, store, newExpense(t, "2024-03-02", "15.00", "Food", "Snack"))

	total, err := store.Total(ctx, datePtr(t, "2024-03-01"), datePtr(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "42.50", model.FormatAmount(total))

	summary, err := store.SummarizeByCategory(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "Food", summary[0].Category)
	assert.Equal(t, "57.50", model.FormatAmount(summary[0].Total))
}
