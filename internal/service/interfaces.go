// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// ExpenseFilter narrows an expense listing. All set fields must match.
type ExpenseFilter struct {
	StartDate *time.Time // inclusive
	EndDate   *time.Time // inclusive
	Category  string     // empty or model.AllCategories matches every category
	Keyword   string     // case-insensitive substring of the description
}

// CategoryStore manages the category table.
type CategoryStore interface {
	GetCategories(ctx context.Context) ([]string, error)
	CategoryExists(ctx context.Context, name string) (bool, error)
	AddCategory(ctx context.Context, name string) error
	RenameCategory(ctx context.Context, oldName, newName string) (bool, error)
	DeleteCategory(ctx context.Context, name string) (bool, error)
}

// ExpenseWriter is the subset of the store used by importers.
type ExpenseWriter interface {
	AddCategory(ctx context.Context, name string) error
	AddExpense(ctx context.Context, expense model.Expense) (int64, error)
}

// ExpenseStore manages expenses and their aggregates.
type ExpenseStore interface {
	AddExpense(ctx context.Context, expense model.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense model.Expense) error
	DeleteExpense(ctx context.Context, id int64) (bool, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	SummarizeByCategory(ctx context.Context, start, end *time.Time) ([]model.CategoryTotal, error)
	Total(ctx context.Context, start, end *time.Time) (decimal.Decimal, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	CategoryStore
	ExpenseStore

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	SeedDefaultCategories(ctx context.Context) (bool, error)
	Close() error
}
