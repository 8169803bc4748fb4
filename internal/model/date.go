package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used for storage and CSV.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a string is not an ISO-8601 date.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Date-time layouts accepted in addition to DateLayout. The time part is dropped.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDate parses an ISO-8601 date and returns it as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDate(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseOptionalDate parses s, returning nil for a blank string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TruncateDate drops the time of day, keeping the calendar date as written.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
