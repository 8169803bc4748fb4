// Package storage provides the data persistence layer for the expense tracker.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/expense-tracker/internal/model"
)

// Validation and lookup errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrInvalidExpense    = errors.New("invalid expense")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrUnknownCategory   = errors.New("category does not exist")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrCorruptAmount     = errors.New("stored amount is not a finite number")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// normalizeCategoryName trims a category name and rejects blank ones.
func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidCategory)
	}
	return name, nil
}

// validateExpense checks an expense before it reaches the database.
func validateExpense(expense *model.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, err)
	}
	return nil
}
