// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/finance-advisor/pkg/finance"
)

// FindMonth finds a month total by its YYYY-MM key in the totals slice.
// Returns a pointer to the total if found, nil otherwise.
func FindMonth(totals []finance.MonthTotal, key string) *finance.MonthTotal {
	for i := range totals {
		if totals[i].Key == key {
			return &totals[i]
		}
	}
	return nil
}
