// Package datetime provides month-key utilities for savings ledgers and expense comparisons.
package datetime

import (
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/finance-advisor/pkg/constants"
)

const (
	// MonthKeyLayout is the format of ledger keys and comparison labels.
	MonthKeyLayout = constants.MonthKeyLayout
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Key returns the YYYY-MM representation of the month.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns a short human label such as "Mar 2025".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String()[:3], m.Year)
}

// ParseMonthKey parses a YYYY-MM key.
func ParseMonthKey(key string) (Month, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// SortMonthKeys returns a sorted copy of the given YYYY-MM keys. Zero-padded keys
// sort chronologically under lexicographic order.
func SortMonthKeys(keys []string) []string {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)
	return sorted
}

// LastNMonths returns the n calendar months ending with the month containing now,
// oldest first. n <= 0 yields an empty slice.
func LastNMonths(now time.Time, n int) []Month {
	if n <= 0 {
		return []Month{}
	}
	// Anchor on the first of the month so AddDate never normalizes into a later month.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]Month, n)
	for i := 0; i < n; i++ {
		months[i] = MonthOf(anchor.AddDate(0, i-(n-1), 0))
	}
	return months
}
