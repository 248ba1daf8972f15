// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/spf13/cast"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total.
// A non-positive total yields 0 rather than NaN or Inf.
func CalculatePercentage(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// Finite replaces NaN and infinities with 0.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// ParseAmount coerces a raw form or document value into a non-negative amount.
// Empty, unparseable, non-finite and negative inputs all become 0.
func ParseAmount(raw any) float64 {
	switch v := raw.(type) {
	case nil, bool:
		return 0
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
		if raw == "" {
			return 0
		}
	}
	val, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0
	}
	val = Finite(val)
	if val < 0 {
		return 0
	}
	return val
}
