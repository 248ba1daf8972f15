// Package finance provides the expense aggregation, classification and savings
// calculations behind the advisor.
package finance

import (
	"sort"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// ExpenseSet maps an expense category to its raw form value. Values may be
// strings, numbers, or missing; they are coerced when summed.
type ExpenseSet map[string]any

// Category is the classification of an expense name.
type Category string

const (
	Primary   Category = "Primary"
	Secondary Category = "Secondary"
	Unknown   Category = "Unknown"
)

var primaryCategories = map[string]struct{}{
	"housing":     {},
	"electricity": {},
	"water":       {},
	"gas":         {},
	"mobile":      {},
	"insurance":   {},
	"loans":       {},
	"provident":   {},
	"education":   {},
	"medication":  {},
	"groceries":   {},
}

var secondaryCategories = map[string]struct{}{
	"lifestyle":     {},
	"traveling":     {},
	"entertainment": {},
	"misc":          {},
}

// Classify reports whether an expense name is a primary (essential) or
// secondary (discretionary) category. Matching is exact and case-insensitive;
// surrounding whitespace is not stripped.
func Classify(name string) Category {
	key := strings.ToLower(name)
	if _, ok := primaryCategories[key]; ok {
		return Primary
	}
	if _, ok := secondaryCategories[key]; ok {
		return Secondary
	}
	return Unknown
}

// PrimaryCategories returns the recognised primary category names in sorted order.
func PrimaryCategories() []string {
	return sortedKeys(primaryCategories)
}

// SecondaryCategories returns the recognised secondary category names in sorted order.
func SecondaryCategories() []string {
	return sortedKeys(secondaryCategories)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SumAmounts totals every value in the set. Values that cannot be parsed as a
// finite non-negative number contribute 0, so the result is never negative.
func SumAmounts(set ExpenseSet) float64 {
	total := 0.0
	for _, raw := range set {
		total += mathutil.ParseAmount(raw)
	}
	return total
}

// Amount returns the coerced value of a single category, or 0 when it is absent.
// Names are matched case-insensitively; differently-cased duplicates are summed.
func (s ExpenseSet) Amount(category string) float64 {
	total := 0.0
	for name, raw := range s {
		if strings.EqualFold(name, category) {
			total += mathutil.ParseAmount(raw)
		}
	}
	return total
}

// Amounts returns the coerced form of every entry in the set.
func (s ExpenseSet) Amounts() map[string]float64 {
	out := make(map[string]float64, len(s))
	for name, raw := range s {
		out[name] = mathutil.ParseAmount(raw)
	}
	return out
}

// FromAmounts builds an ExpenseSet from already-parsed amounts.
func FromAmounts(amounts map[string]float64) ExpenseSet {
	set := make(ExpenseSet, len(amounts))
	for name, amount := range amounts {
		set[name] = amount
	}
	return set
}
