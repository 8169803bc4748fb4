// Package testutil provides shared test helpers for packages that need a
// real expense ledger.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
	"github.com/Veraticus/expense-tracker/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	Path    string
	t       *testing.T
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup func(context.Context, service.Storage) error
	// Categories are added after migration. When SkipSeed is false they
	// are added on top of the default categories.
	Categories []string
	SkipSeed   bool
}

// SetupTestDB creates a migrated ledger in a temporary directory seeded
// with the default categories. It is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "expenses.sqlite3")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Register cleanup
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if !opts.SkipSeed {
		if _, err := store.SeedDefaultCategories(ctx); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}

	for _, name := range opts.Categories {
		if err := store.AddCategory(ctx, name); err != nil {
			t.Fatalf("failed to seed category %q: %v", name, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Path:    dbPath,
		t:       t,
	}
}

// MustAddExpense stores an expense built from plain strings or fails the test.
func (db *TestDB) MustAddExpense(date, amount, category, description string) model.Expense {
	db.t.Helper()

	d, err := model.ParseDate(date)
	if err != nil {
		db.t.Fatalf("bad test date %q: %v", date, err)
	}

	expense := model.Expense{
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
	}

	id, err := db.Storage.AddExpense(context.Background(), expense)
	if err != nil {
		db.t.Fatalf("failed to add expense %q: %v", description, err)
	}
	expense.ID = id

	return expense
}

// MustListExpenses returns every expense in listing order or fails the test.
func (db *TestDB) MustListExpenses() []model.Expense {
	db.t.Helper()

	expenses, err := db.Storage.ListExpenses(context.Background(), service.ExpenseFilter{})
	if err != nil {
		db.t.Fatalf("failed to list expenses: %v", err)
	}
	return expenses
}
