package finance

import (
	"fmt"
	"math"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/datetime"
	"github.com/iwvelando/finance-advisor/pkg/format"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// MonthlySavingsLedger maps a YYYY-MM key to the amount saved in that month.
type MonthlySavingsLedger map[string]float64

// SortedMonths returns the ledger keys in chronological order.
func (l MonthlySavingsLedger) SortedMonths() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	return datetime.SortMonthKeys(keys)
}

// TotalSavings sums every month in the ledger. Non-finite values count as 0.
func TotalSavings(ledger MonthlySavingsLedger) float64 {
	total := 0.0
	for _, month := range ledger.SortedMonths() {
		total += mathutil.Finite(ledger[month])
	}
	return total
}

// ProgressPercentage is the share of target already saved, capped at 100.
// A non-positive target yields 0.
func ProgressPercentage(total, target float64) float64 {
	total, target = mathutil.Finite(total), mathutil.Finite(target)
	if target <= 0 {
		return 0
	}
	return mathutil.Min(constants.ProgressMaxPercent, mathutil.CalculatePercentage(total, target))
}

// FeasibilityStatus is the outcome of a goal feasibility check.
type FeasibilityStatus string

const (
	OnTrack        FeasibilityStatus = "On Track"
	NearGoal       FeasibilityStatus = "Near Goal"
	NeedsAttention FeasibilityStatus = "Needs Attention"
)

// AdviceResult carries a status, a human message and a presentation colour hint.
type AdviceResult struct {
	Status  FeasibilityStatus `json:"status"`
	Message string            `json:"message"`
	Color   string            `json:"color"`
	Score   float64           `json:"score"`
}

// MonthlyTarget is the amount that must be saved each month to reach goal in
// months. A non-positive timeframe falls back to the default of 12 months.
func MonthlyTarget(goal float64, months int) float64 {
	if months <= 0 {
		months = constants.DefaultTimeframeMonths
	}
	return mathutil.Finite(goal) / float64(months)
}

// GoalFeasibility compares the monthly amount needed for a goal against the
// current surplus of income over expenses.
func GoalFeasibility(income, expenses, goalAmount float64, months int) AdviceResult {
	income, expenses, goalAmount = mathutil.Finite(income), mathutil.Finite(expenses), mathutil.Finite(goalAmount)
	if goalAmount <= 0 {
		return AdviceResult{
			Status:  OnTrack,
			Message: "There is no outstanding goal amount to save for.",
			Color:   "green",
			Score:   constants.FeasibilityMaxScore,
		}
	}

	monthlyNeeded := MonthlyTarget(goalAmount, months)
	capacity := income - expenses
	score := mathutil.CalculatePercentage(capacity, monthlyNeeded)

	switch {
	case score >= constants.FeasibilityOnTrack:
		return AdviceResult{
			Status:  OnTrack,
			Message: "You're on track to reach your goal!",
			Color:   "green",
			Score:   score,
		}
	case score >= constants.FeasibilityNearGoal:
		return AdviceResult{
			Status:  NearGoal,
			Message: "You're close! Small adjustments needed.",
			Color:   "yellow",
			Score:   score,
		}
	default:
		shortfall := monthlyNeeded - capacity
		return AdviceResult{
			Status:  NeedsAttention,
			Message: fmt.Sprintf("Increase monthly savings by %s to reach your goal", format.Currency(shortfall)),
			Color:   "red",
			Score:   score,
		}
	}
}

// AdjustBudget describes the monthly expense cut required to fund the goal, or
// confirms that the current budget already covers it.
func AdjustBudget(income, expenses, goal float64, months int) string {
	required := MonthlyTarget(goal, months)
	available := mathutil.Finite(income) - mathutil.Finite(expenses)
	if available >= required {
		return "Your budget is on track!"
	}
	return fmt.Sprintf("Reduce expenses by %s per month to reach your goal!", format.Currency(required-available))
}

// MonthlySavings is income minus the coerced total of the expense set.
func MonthlySavings(income float64, expenses ExpenseSet) float64 {
	return mathutil.Finite(income) - SumAmounts(expenses)
}

// CurrentSavings is the monthly amount left after expenses and investments,
// never negative.
func CurrentSavings(income, expenses, investments float64) float64 {
	return mathutil.Max(0, mathutil.Finite(income)-mathutil.Finite(expenses)-mathutil.Finite(investments))
}

// ProjectedMonths estimates how many months of saving monthlySaving it takes to
// close the gap between saved and target. ok is false when the goal cannot be
// reached at a non-positive saving rate.
func ProjectedMonths(target, saved, monthlySaving float64) (months int, ok bool) {
	remaining := mathutil.Finite(target) - mathutil.Finite(saved)
	if remaining <= 0 {
		return 0, true
	}
	monthlySaving = mathutil.Finite(monthlySaving)
	if monthlySaving <= 0 {
		return 0, false
	}
	projected := math.Ceil(remaining / monthlySaving)
	if projected > math.MaxInt32 {
		return 0, false
	}
	return int(projected), true
}
