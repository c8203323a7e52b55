package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidMonth = errors.New("the month must be a number between 1 and 12")

// ValidateMonth parses a user supplied month such as "6" or "06".
func ValidateMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidMonth
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("month %q: %w", s, ErrInvalidMonth)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("month %q: %w", s, ErrInvalidMonth)
	}

	return time.Month(n), nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthsBack counts how many "previous month" presses reach target from now.
func MonthsBack(now time.Time, year int, month time.Month) int {
	return (now.Year()-year)*12 + (int(now.Month()) - int(month))
}
