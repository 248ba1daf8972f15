package advice

import (
	"fmt"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// ExpenseFlags lists a warning for every spending threshold the input crosses.
// Checks are independent and always reported in the same order.
func ExpenseFlags(in Input) []string {
	in = in.normalized()
	flags := make([]string, 0)

	if in.TotalExpenses > in.Income {
		flags = append(flags, "Your total expenses exceed your income. Consider reducing discretionary spending.")
	}
	if in.Entertainment > constants.EntertainmentShare*in.Income {
		flags = append(flags, "Consider reducing entertainment expenses with free or low-cost activities.")
	}
	if in.Travel > constants.TravelShare*in.Income {
		flags = append(flags, "Consider budget-friendly travel alternatives.")
	}
	if in.Lifestyle > constants.LifestyleShare*in.Income {
		flags = append(flags, "Consider reducing lifestyle expenses and avoiding impulse purchases.")
	}
	if in.Medical == 0 {
		flags = append(flags, "Consider health insurance for medical emergencies.")
	}
	if in.InflationRate > constants.InflationWarning {
		flags = append(flags, "Consider investing in assets that grow over time to protect your savings.")
	}
	if in.Income-in.TotalExpenses < constants.SavingsBufferShare*in.Income {
		flags = append(flags, "Your savings buffer is low. Consider increasing your emergency fund.")
	}
	if in.InflationRate > constants.InflationHigh {
		flags = append(flags, "High inflation risk detected. Diversify investments into inflation-protected assets.")
	}
	if in.SavingsRate() < constants.TargetSavingsRate {
		flags = append(flags, "Your savings rate is below recommended levels. Aim to save at least 20% of your income.")
	}
	if in.PrimaryExpenses > constants.PrimaryExpenseShare*in.Income {
		flags = append(flags, "Your primary expenses are high relative to income. Consider ways to reduce fixed costs.")
	}
	if in.Entertainment+in.Travel+in.Lifestyle > constants.DiscretionaryShare*in.Income {
		flags = append(flags, "Your discretionary spending is high. Consider the 50/30/20 budgeting rule.")
	}

	return flags
}

// StabilityAdvice returns five notes on savings, expenses, investing, insurance
// and the emergency fund, in that order.
func StabilityAdvice(in Input) []string {
	in = in.normalized()
	advice := make([]string, 0, 5)

	savingsRate := in.SavingsRate()
	if savingsRate < constants.TargetSavingsRate {
		advice = append(advice, fmt.Sprintf(
			"Increase Savings: Set up automatic savings transfers and aim for 20%% of income. Current savings rate: %.1f%%",
			savingsRate))
	} else {
		advice = append(advice, "Increase Savings: Great job maintaining savings! Consider increasing investments for better returns.")
	}

	if in.TotalExpenses > constants.ExpenseReviewShare*in.Income {
		advice = append(advice, "Reduce Expenses: Review subscriptions, utilities, and daily expenses. Target reducing monthly expenses by 15-20%.")
	} else {
		advice = append(advice, "Reduce Expenses: Your expense management is good. Keep monitoring for optimization opportunities.")
	}

	if in.InflationRate > constants.InflationWarning {
		advice = append(advice, "Investment Strategy: Consider diversifying into inflation-protected securities, bonds, and stable dividend stocks.")
	} else {
		advice = append(advice, "Investment Strategy: Look into index funds, government bonds, and high-yield savings accounts.")
	}

	if in.Medical == 0 {
		advice = append(advice, "Insurance Planning: Priority: Get health insurance coverage. Consider life and disability insurance based on dependents.")
	} else {
		advice = append(advice, "Insurance Planning: Review current insurance coverage annually. Consider umbrella policy for additional protection.")
	}

	// Months of expenses the monthly surplus would cover. No expenses means
	// nothing needs covering.
	if in.TotalExpenses > 0 {
		buffer := (in.Income - in.TotalExpenses) / in.TotalExpenses
		if buffer < constants.EmergencyFundMonths {
			advice = append(advice, fmt.Sprintf(
				"Emergency Fund: Build emergency fund to cover 6 months of expenses. Current buffer: %.1f months.",
				mathutil.Finite(buffer)))
			return advice
		}
	}
	advice = append(advice, "Emergency Fund: Well done maintaining emergency fund! Consider investing excess beyond 6 months of expenses.")

	return advice
}
