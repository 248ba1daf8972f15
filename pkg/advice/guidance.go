package advice

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/format"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// IncreaseSavingsAdvice reports the current monthly surplus, or warns when
// there is none.
func IncreaseSavingsAdvice(income, totalExpenses float64) string {
	savings := mathutil.Finite(income) - mathutil.Finite(totalExpenses)
	if savings <= 0 {
		return "You are spending more than you earn. Focus on reducing expenses first."
	}
	return fmt.Sprintf("Automate savings, cut non-essential costs, and set clear savings goals. Current savings: %s per month.",
		format.Currency(savings))
}

// ReduceExpensesAdvice suggests common cuts alongside the current spend.
func ReduceExpensesAdvice(totalExpenses float64) string {
	return fmt.Sprintf("Review subscriptions, switch to generic brands, and reduce discretionary spending. Current expenses: %s per month.",
		format.Currency(mathutil.Finite(totalExpenses)))
}

var assetAllocations = map[RiskTolerance][]string{
	ToleranceLow: {
		"Government bonds.",
		"High-yield savings accounts.",
		"Index funds or ETFs with a history of stable returns.",
		"Fixed deposits.",
		"Municipal bonds for local government backing.",
	},
	ToleranceMedium: {
		"Dividend-paying stocks.",
		"Real Estate Investment Trusts (REITs).",
		"Balanced mutual funds.",
		"Corporate bonds.",
		"Peer-to-peer lending platforms for diversified income.",
	},
	ToleranceHigh: {
		"Growth stocks.",
		"Cryptocurrencies.",
		"Commodities like gold or oil.",
		"Venture capital or startup investments.",
		"Emerging market stocks for rapid growth potential.",
	},
}

// AssetAllocationAdvice lists investments suited to the risk tolerance. An
// unrecognised tolerance is treated as medium.
func AssetAllocationAdvice(tolerance RiskTolerance) string {
	tolerance = ParseRiskTolerance(string(tolerance))
	return fmt.Sprintf("For %s-risk investments, consider:\n%s",
		tolerance, numbered(assetAllocations[tolerance]))
}

// InsuranceAdvice suggests cover based on income and spending.
func InsuranceAdvice(income, totalExpenses float64) string {
	income, totalExpenses = mathutil.Finite(income), mathutil.Finite(totalExpenses)
	options := make([]string, 0, 3)
	if income > constants.TermLifeIncomeThreshold {
		options = append(options, "Term life insurance.")
	}
	if totalExpenses > constants.HealthExpenseThreshold {
		options = append(options, "Health insurance.")
	}
	if income > constants.DisabilityIncomeThreshold {
		options = append(options, "Disability insurance.")
	}
	if len(options) == 0 {
		return "Based on your income and expenses, you may not need additional insurance at this time."
	}
	return "Consider the following insurance options:\n" + numbered(options)
}

// EmergencyFundGoal is six months of income.
func EmergencyFundGoal(income float64) float64 {
	return mathutil.Max(0, mathutil.Finite(income)) * constants.EmergencyFundMonths
}

// EmergencyFundAdvice states the emergency fund goal.
func EmergencyFundAdvice(income float64) string {
	return fmt.Sprintf("Aim to save 3-6 months of expenses. Emergency fund goal: %s.",
		format.Currency(EmergencyFundGoal(income)))
}

func numbered(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}
