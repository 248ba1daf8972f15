// Package format renders amounts and percentages for advice messages and reports.
package format

import (
	"math"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a rupee string with thousands separators (e.g., "-₹1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + formatted
	}
	return formatted
}

// Percent returns a percentage with one decimal place (e.g., "12.5%").
func Percent(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	return decimal.NewFromFloat(value).StringFixed(1) + "%"
}

func formatPositiveCurrency(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}
	rounded := decimal.NewFromFloat(value).Round(2).InexactFloat64()
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.2f", rounded)
}
