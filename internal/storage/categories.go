package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// GetCategories returns all category names in lexicographic order.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// CategoryExists reports whether a category with the given name exists.
func (s *SQLiteStorage) CategoryExists(ctx context.Context, name string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	name, err := normalizeCategoryName(name)
	if err != nil {
		return false, err
	}

	var found int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE name = ?`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query category: %w", err)
	}
	return true, nil
}

// AddCategory inserts a category. Adding an existing name is a no-op.
func (s *SQLiteStorage) AddCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	name, err := normalizeCategoryName(name)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories(name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		slog.Debug("created category", "name", name)
	}
	return nil
}

// RenameCategory renames a category. Expenses follow through the foreign
// key's ON UPDATE CASCADE. It returns false when oldName does not exist.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, oldName, newName string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	oldName, err := normalizeCategoryName(oldName)
	if err != nil {
		return false, err
	}
	newName, err = normalizeCategoryName(newName)
	if err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("%w: %s", ErrDuplicateCategory, newName)
		}
		return false, fmt.Errorf("failed to rename category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		slog.Debug("rename skipped, category not found", "name", oldName)
		return false, nil
	}

	slog.Debug("renamed category", "from", oldName, "to", newName)
	return true, nil
}

// DeleteCategory removes a category that no expense references.
// It returns false, without error, when the category is still in use.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, name string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	name, err := normalizeCategoryName(name)
	if err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	count, err := expenseCountByCategory(ctx, tx, name)
	if err != nil {
		return false, err
	}
	if count > 0 {
		slog.Debug("category in use, not deleting", "name", name, "expenses", count)
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name); err != nil {
		if isForeignKeyViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit category deletion: %w", err)
	}

	slog.Debug("deleted category", "name", name)
	return true, nil
}

// SeedDefaultCategories inserts model.DefaultCategories when the category
// table is empty. A table holding any category, even an unused custom one,
// is left untouched. It reports whether seeding happened.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, name := range model.DefaultCategories {
		if _, err := tx.ExecContext(ctx, `INSERT INTO categories(name) VALUES (?)`, name); err != nil {
			return false, fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit default categories: %w", err)
	}

	slog.Info("Seeded default categories", "count", len(model.DefaultCategories))
	return true, nil
}

func expenseCountByCategory(ctx context.Context, q queryable, name string) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE category = ?`, name).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses for category: %w", err)
	}
	return count, nil
}
