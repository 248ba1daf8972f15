// Package tax estimates Indian income tax under the old and new regimes along
// with capital gains tax and net GST liability.
package tax

import (
	"math"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// Bracket taxes the income between the previous bracket's upper bound and its
// own upper bound at Rate.
type Bracket struct {
	UpperBound float64 `json:"upperBound"`
	Rate       float64 `json:"rate"`
}

// Table is an ordered set of brackets with strictly increasing upper bounds.
// The last bracket is unbounded.
type Table []Bracket

// OldRegimeTable returns the old regime slabs.
func OldRegimeTable() Table {
	return Table{
		{UpperBound: 250000, Rate: 0},
		{UpperBound: 500000, Rate: 0.05},
		{UpperBound: 1000000, Rate: 0.20},
		{UpperBound: math.Inf(1), Rate: 0.30},
	}
}

// NewRegimeTable returns the new regime slabs.
func NewRegimeTable() Table {
	return Table{
		{UpperBound: 1200000, Rate: 0},
		{UpperBound: 1275000, Rate: 0.05},
		{UpperBound: 1500000, Rate: 0.10},
		{UpperBound: 2000000, Rate: 0.15},
		{UpperBound: math.Inf(1), Rate: 0.20},
	}
}

// Regime selects a bracket table and deduction rule.
type Regime string

const (
	RegimeOld Regime = "old"
	RegimeNew Regime = "new"
)

// ParseRegime maps a tag onto a regime, ignoring case and surrounding
// whitespace. Anything other than "new" is the old regime.
func ParseRegime(raw string) Regime {
	if Regime(strings.ToLower(strings.TrimSpace(raw))) == RegimeNew {
		return RegimeNew
	}
	return RegimeOld
}

// Table returns the bracket table for the regime.
func (r Regime) Table() Table {
	if r == RegimeNew {
		return NewRegimeTable()
	}
	return OldRegimeTable()
}

// ProgressiveTax applies each bracket's rate to the slice of income that falls
// inside it. Non-positive or non-finite income owes nothing.
func ProgressiveTax(taxable float64, table Table) float64 {
	taxable = mathutil.Finite(taxable)
	if taxable <= 0 {
		return 0
	}

	tax := 0.0
	lower := 0.0
	for _, bracket := range table {
		if taxable <= lower {
			break
		}
		portion := mathutil.Min(taxable, bracket.UpperBound) - lower
		tax += portion * bracket.Rate
		lower = bracket.UpperBound
	}
	return tax
}

// TaxableIncome subtracts the regime's deductions from gross income. The old
// regime allows capped investments and other deductions; the new regime allows
// only the standard deduction. The result is never negative.
func TaxableIncome(gross, investments, deductions float64, regime Regime) float64 {
	gross = mathutil.Finite(gross)
	investments = mathutil.Max(0, mathutil.Finite(investments))
	deductions = mathutil.Max(0, mathutil.Finite(deductions))

	var allowance float64
	if ParseRegime(string(regime)) == RegimeNew {
		allowance = constants.StandardDeduction
	} else {
		allowance = mathutil.Min(investments, constants.InvestmentDeductionCap) +
			mathutil.Min(deductions, constants.OtherDeductionCap)
	}
	return mathutil.Max(0, gross-allowance)
}

// HoldingPeriod classifies a capital gain.
type HoldingPeriod string

const (
	HoldingShort HoldingPeriod = "short"
	HoldingLong  HoldingPeriod = "long"
)

// ParseHoldingPeriod maps a tag onto a holding period. Anything other than
// "long" is short term.
func ParseHoldingPeriod(raw string) HoldingPeriod {
	if HoldingPeriod(strings.ToLower(strings.TrimSpace(raw))) == HoldingLong {
		return HoldingLong
	}
	return HoldingShort
}

// CapitalGainsTax taxes long-term gains above the exemption at the long-term
// rate and short-term gains in full at the short-term rate.
func CapitalGainsTax(gains float64, period HoldingPeriod) float64 {
	gains = mathutil.Max(0, mathutil.Finite(gains))
	if ParseHoldingPeriod(string(period)) == HoldingLong {
		return mathutil.Max(0, gains-constants.LongTermGainsExemption) * constants.LongTermGainsRate
	}
	return gains * constants.ShortTermGainsRate
}

// GSTLiability is GST collected less input tax credit, never negative.
func GSTLiability(gst, inputTaxCredit float64) float64 {
	return mathutil.Max(0, mathutil.Finite(gst)-mathutil.Finite(inputTaxCredit))
}

// ConvertForeign converts a USD amount to rupees. A non-positive rate falls
// back to the default rate.
func ConvertForeign(usd, rate float64) float64 {
	rate = mathutil.Finite(rate)
	if rate <= 0 {
		rate = constants.UsdToInr
	}
	return mathutil.Max(0, mathutil.Finite(usd)) * rate
}
