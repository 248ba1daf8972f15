// Package advice turns a snapshot of income, expenses and circumstances into
// spending diagnostics, investment guidance and a life-event risk level.
//
// Every function in this package is pure: inputs are never mutated and
// identical inputs always produce identical output. Non-finite inputs are
// treated as 0 and every ratio is guarded against a zero denominator.
package advice

import (
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// Input is the numeric snapshot the advice functions work from. All amounts are
// monthly.
type Input struct {
	Income            float64 `json:"income"`
	TotalExpenses     float64 `json:"totalExpenses"`
	PrimaryExpenses   float64 `json:"primaryExpenses"`
	SecondaryExpenses float64 `json:"secondaryExpenses"`
	Entertainment     float64 `json:"entertainment"`
	Travel            float64 `json:"travel"`
	Lifestyle         float64 `json:"lifestyle"`
	Medical           float64 `json:"medical"`
	InflationRate     float64 `json:"inflationRate"`
	Event             string  `json:"event"`
}

// normalized returns a copy with every amount made finite.
func (in Input) normalized() Input {
	in.Income = mathutil.Finite(in.Income)
	in.TotalExpenses = mathutil.Finite(in.TotalExpenses)
	in.PrimaryExpenses = mathutil.Finite(in.PrimaryExpenses)
	in.SecondaryExpenses = mathutil.Finite(in.SecondaryExpenses)
	in.Entertainment = mathutil.Finite(in.Entertainment)
	in.Travel = mathutil.Finite(in.Travel)
	in.Lifestyle = mathutil.Finite(in.Lifestyle)
	in.Medical = mathutil.Finite(in.Medical)
	in.InflationRate = mathutil.Finite(in.InflationRate)
	return in
}

// SavingsRate is the share of income left after expenses, as a percentage.
// It is 0 when income is not positive.
func (in Input) SavingsRate() float64 {
	in = in.normalized()
	return mathutil.CalculatePercentage(in.Income-in.TotalExpenses, in.Income)
}

// RiskTolerance is the investor's stated appetite for risk.
type RiskTolerance string

const (
	ToleranceLow    RiskTolerance = "low"
	ToleranceMedium RiskTolerance = "medium"
	ToleranceHigh   RiskTolerance = "high"
)

// ParseRiskTolerance maps a free-form tag onto a RiskTolerance. Matching ignores
// case and surrounding whitespace; anything unrecognised is medium.
func ParseRiskTolerance(raw string) RiskTolerance {
	switch RiskTolerance(strings.ToLower(strings.TrimSpace(raw))) {
	case ToleranceLow:
		return ToleranceLow
	case ToleranceHigh:
		return ToleranceHigh
	default:
		return ToleranceMedium
	}
}

// Tier returns the investment product tier matching the tolerance.
func (t RiskTolerance) Tier() RiskTier {
	switch t {
	case ToleranceLow:
		return TierLow
	case ToleranceHigh:
		return TierHigh
	default:
		return TierModerate
	}
}
