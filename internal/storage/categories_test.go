package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/expense-tracker/internal/model"
	"github.com/Veraticus/expense-tracker/internal/service"
)

func TestSeedDefaultCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty table once", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "seed.db")

		first, err := Open(ctx, dbPath)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := Open(ctx, dbPath)
		require.NoError(t, err)
		defer func() { _ = second.Close() }()

		seeded, err := second.SeedDefaultCategories(ctx)
		require.NoError(t, err)
		assert.False(t, seeded)

		categories, err := second.GetCategories(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, model.DefaultCategories, categories)
		assert.Len(t, categories, len(model.DefaultCategories))
	})

	t.Run("single custom category blocks seeding", func(t *testing.T) {
		store, cleanup := createEmptyStorage(t)
		defer cleanup()

		require.NoError(t, store.AddCategory(ctx, "Travel"))

		seeded, err := store.SeedDefaultCategories(ctx)
		require.NoError(t, err)
		assert.False(t, seeded)

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Travel"}, categories)
	})

	t.Run("reports seeding", func(t *testing.T) {
		store, cleanup := createEmptyStorage(t)
		defer cleanup()

		seeded, err := store.SeedDefaultCategories(ctx)
		require.NoError(t, err)
		assert.True(t, seeded)
	})
}

func TestGetCategories_Ordered(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Education", "Entertainment", "Food", "Health", "Other",
		"Rent", "Shopping", "Transport", "Utilities",
	}, categories)
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createEmptyStorage(t)
	defer cleanup()

	require.NoError(t, store.AddCategory(ctx, "Travel"))
	require.NoError(t, store.AddCategory(ctx, "Travel"), "adding an existing category is a no-op")
	require.NoError(t, store.AddCategory(ctx, "  Gifts "))

	categories, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gifts", "Travel"}, categories)

	exists, err := store.CategoryExists(ctx, "Gifts")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.CategoryExists(ctx, "Pets")
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestRenameCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to expenses", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		shoes := mustAdd(t, store, newExpense(t, "2024-01-05", "80", "Shopping", "Shoes"))
		shirt := mustAdd(t, store, newExpense(t, "2024-01-06", "25", "Shopping", "Shirt"))
		lunch := mustAdd(t, store, newExpense(t, "2024-01-06", "12", "Food", "Lunch"))

		renamed, err := store.RenameCategory(ctx, "Shopping", "Retail")
		require.NoError(t, err)
		assert.True(t, renamed)

		for _, id := range []int64{shoes, shirt} {
			e, err := store.GetExpense(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "Retail", e.Category)
		}

		e, err := store.GetExpense(ctx, lunch)
		require.NoError(t, err)
		assert.Equal(t, "Food", e.Category)

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Contains(t, categories, "Retail")
		assert.NotContains(t, categories, "Shopping")

		retail, err := store.ListExpenses(ctx, service.ExpenseFilter{Category: "Retail"})
		require.NoError(t, err)
		assert.Len(t, retail, 2)
	})

	t.Run("unknown category is a no-op", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		renamed, err := store.RenameCategory(ctx, "Nope", "Still Nope")
		require.NoError(t, err)
		assert.False(t, renamed)

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.NotContains(t, categories, "Still Nope")
	})

	t.Run("collision with existing name", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.RenameCategory(ctx, "Shopping", "Food")
		assert.ErrorIs(t, err, ErrDuplicateCategory)

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Contains(t, categories, "Shopping")
	})

	t.Run("blank names rejected", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.RenameCategory(ctx, "Food", " ")
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("blocked while referenced", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		id := mustAdd(t, store, newExpense(t, "2024-02-01", "9.99", "Health", "Vitamins"))

		deleted, err := store.DeleteCategory(ctx, "Health")
		require.NoError(t, err)
		assert.False(t, deleted)

		exists, err := store.CategoryExists(ctx, "Health")
		require.NoError(t, err)
		assert.True(t, exists)

		// Reassign the only reference, then deletion succeeds.
		e, err := store.GetExpense(ctx, id)
		require.NoError(t, err)
		e.Category = "Other"
		require.NoError(t, store.UpdateExpense(ctx, *e))

		deleted, err = store.DeleteCategory(ctx, "Health")
		require.NoError(t, err)
		assert.True(t, deleted)

		exists, err = store.CategoryExists(ctx, "Health")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("allowed after expenses are removed", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		id := mustAdd(t, store, newExpense(t, "2024-02-01", "30", "Education", "Book"))

		deleted, err := store.DeleteCategory(ctx, "Education")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = store.DeleteExpense(ctx, id)
		require.NoError(t, err)

		deleted, err = store.DeleteCategory(ctx, "Education")
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("unused category", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		deleted, err := store.DeleteCategory(ctx, "Rent")
		require.NoError(t, err)
		assert.True(t, deleted)

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.NotContains(t, categories, "Rent")
	})
}
