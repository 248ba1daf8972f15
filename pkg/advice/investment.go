package advice

import (
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// SpendingPattern labels how discretionary spending compares to essentials.
type SpendingPattern string

const (
	HighDiscretionary     SpendingPattern = "High discretionary spending"
	ModerateDiscretionary SpendingPattern = "Moderate discretionary spending"
	Conservative          SpendingPattern = "Conservative spending pattern"
)

// AnalyzeSpendingPattern compares secondary spending to primary spending. With
// no primary spending any secondary spending at all counts as high.
func AnalyzeSpendingPattern(primaryTotal, secondaryTotal float64) SpendingPattern {
	primaryTotal, secondaryTotal = mathutil.Finite(primaryTotal), mathutil.Finite(secondaryTotal)
	if primaryTotal <= 0 {
		if secondaryTotal > 0 {
			return HighDiscretionary
		}
		return Conservative
	}

	score := mathutil.CalculatePercentage(secondaryTotal, primaryTotal)
	switch {
	case score > constants.HighDiscretionaryRatio:
		return HighDiscretionary
	case score > constants.ModerateDiscretionaryRatio:
		return ModerateDiscretionary
	default:
		return Conservative
	}
}

// RiskTier selects a product list for investment suggestions.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
)

// Products returns the investment products suggested for a tier. Unknown tiers
// get a plain savings account.
func Products(tier RiskTier) []string {
	switch tier {
	case TierLow:
		return []string{"Fixed Deposits", "Bonds"}
	case TierModerate:
		return []string{"SIPs", "Mutual Funds"}
	case TierHigh:
		return []string{"Stocks", "Crypto", "Startups"}
	default:
		return []string{"Savings Account"}
	}
}

// InvestmentAdvice is a capacity-based suggestion and the products that fit it.
type InvestmentAdvice struct {
	Suggestion string   `json:"suggestion"`
	Tier       RiskTier `json:"tier"`
	Products   []string `json:"products"`
	Percentage float64  `json:"percentage"`
}

// GenerateInvestmentAdvice sizes the disposable share of income and picks a
// product tier. The middle band uses the caller's profile, Moderate when empty.
func GenerateInvestmentAdvice(income, expenses float64, profile RiskTier) InvestmentAdvice {
	income, expenses = mathutil.Finite(income), mathutil.Finite(expenses)
	if profile == "" {
		profile = TierModerate
	}
	pct := mathutil.CalculatePercentage(income-expenses, income)

	var advice InvestmentAdvice
	switch {
	case pct < constants.LowInvestmentCapacity:
		advice = InvestmentAdvice{Suggestion: "Consider starting with low-risk investments", Tier: TierLow}
	case pct < constants.ModerateInvestmentCapacity:
		advice = InvestmentAdvice{Suggestion: "You can diversify your investment portfolio", Tier: profile}
	default:
		advice = InvestmentAdvice{Suggestion: "You have good investment capacity", Tier: TierHigh}
	}
	advice.Products = Products(advice.Tier)
	advice.Percentage = pct
	return advice
}
