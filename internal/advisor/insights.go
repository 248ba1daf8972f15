package advisor

import (
	"github.com/iwvelando/finance-advisor/internal/records"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/finance"
)

// Dashboard is everything the overview screen shows for a user.
type Dashboard struct {
	Profile  records.Profile              `json:"profile"`
	Goal     records.Goal                 `json:"goal"`
	Ledger   finance.MonthlySavingsLedger `json:"ledger"`
	Insights Insights                     `json:"insights"`
	Report   advice.Report                `json:"report"`
	Warnings []string                     `json:"warnings"`
}

// Insights describe progress toward the savings goal.
type Insights struct {
	TargetAmount    float64                 `json:"targetAmount"`
	TimeframeMonths int                     `json:"timeframeMonths"`
	MonthlyTarget   float64                 `json:"monthlyTarget"`
	TotalSaved      float64                 `json:"totalSaved"`
	Progress        float64                 `json:"progress"`
	MonthlySavings  float64                 `json:"monthlySavings"`
	ProjectedMonths int                     `json:"projectedMonths"`
	Reachable       bool                    `json:"reachable"`
	WithinTimeframe bool                    `json:"withinTimeframe"`
	Feasibility     finance.AdviceResult    `json:"feasibility"`
	BudgetAdvice    string                  `json:"budgetAdvice"`
	SpendingPattern advice.SpendingPattern  `json:"spendingPattern"`
	Investment      advice.InvestmentAdvice `json:"investment"`
}

// BuildInsights derives goal progress from a profile, its goal and the savings
// recorded so far. Foreign income is converted at rate.
func BuildInsights(profile records.Profile, goal records.Goal, ledger finance.MonthlySavingsLedger, rate float64) Insights {
	income := profile.TotalIncome(rate)
	primary := profile.PrimaryTotal()
	secondary := profile.SecondaryTotal()
	expenses := primary + secondary
	totalSaved := finance.TotalSavings(ledger)
	monthly := finance.CurrentSavings(income, expenses, profile.Investments)

	projected, reachable := finance.ProjectedMonths(goal.TargetAmount, totalSaved, monthly)
	timeframe := goal.TimeframeMonths
	if timeframe <= 0 {
		timeframe = records.NewGoal().TimeframeMonths
	}

	return Insights{
		TargetAmount:    goal.TargetAmount,
		TimeframeMonths: timeframe,
		MonthlyTarget:   finance.MonthlyTarget(goal.TargetAmount, timeframe),
		TotalSaved:      totalSaved,
		Progress:        finance.ProgressPercentage(totalSaved, goal.TargetAmount),
		MonthlySavings:  monthly,
		ProjectedMonths: projected,
		Reachable:       reachable,
		WithinTimeframe: reachable && projected <= timeframe,
		Feasibility:     finance.GoalFeasibility(income, expenses, goal.TargetAmount, timeframe),
		BudgetAdvice:    finance.AdjustBudget(income, expenses, goal.TargetAmount, timeframe),
		SpendingPattern: advice.AnalyzeSpendingPattern(primary, secondary),
		Investment:      advice.GenerateInvestmentAdvice(income, expenses, advice.ParseRiskTolerance(profile.RiskTolerance).Tier()),
	}
}
