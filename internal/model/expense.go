// Package model defines the domain types shared by storage, import/export and the CLI.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors for expenses.
var (
	ErrMissingDate     = errors.New("expense date is required")
	ErrNegativeAmount  = errors.New("amount must be zero or positive")
	ErrMissingCategory = errors.New("expense category is required")
)

// Expense is a single recorded transaction.
// Values returned from storage are copies; changing them has no effect
// until they are passed back to an update call.
type Expense struct {
	Date        time.Time // calendar date, time of day is ignored
	Amount      decimal.Decimal
	Category    string
	Description string
	ID          int64 // zero until storage assigns one
}

// Validate checks the invariants every persisted expense must satisfy.
func (e *Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, e.Amount.String())
	}
	if err := CheckStorable(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrMissingCategory
	}
	return nil
}

// DateString returns the ISO-8601 calendar date of the expense.
func (e *Expense) DateString() string {
	return FormatDate(e.Date)
}

// CategoryTotal is one row of a per-category summary.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}
