package advice

// Guidance holds the category-specific advice texts.
type Guidance struct {
	IncreaseSavings string `json:"increaseSavings"`
	ReduceExpenses  string `json:"reduceExpenses"`
	AssetAllocation string `json:"assetAllocation"`
	Insurance       string `json:"insurance"`
	EmergencyFund   string `json:"emergencyFund"`
}

// Report is the full advisor output for one snapshot.
type Report struct {
	RiskTolerance   RiskTolerance    `json:"riskTolerance"`
	Risk            RiskLevel        `json:"risk"`
	EventSuggestion string           `json:"eventSuggestion"`
	SpendingPattern SpendingPattern  `json:"spendingPattern"`
	Investment      InvestmentAdvice `json:"investment"`
	Flags           []string         `json:"flags"`
	Stability       []string         `json:"stability"`
	Guidance        Guidance         `json:"guidance"`
	Suggestions     []string         `json:"suggestions"`
}

// BuildReport runs every advisor over the input. The risk tolerance is always
// supplied by the caller.
func BuildReport(in Input, tolerance RiskTolerance) Report {
	in = in.normalized()
	tolerance = ParseRiskTolerance(string(tolerance))

	report := Report{
		RiskTolerance:   tolerance,
		Risk:            AssessEventRisk(in),
		EventSuggestion: EventSuggestion(in.Event),
		SpendingPattern: AnalyzeSpendingPattern(in.PrimaryExpenses, in.SecondaryExpenses),
		Investment:      GenerateInvestmentAdvice(in.Income, in.TotalExpenses, tolerance.Tier()),
		Flags:           ExpenseFlags(in),
		Stability:       StabilityAdvice(in),
		Guidance: Guidance{
			IncreaseSavings: IncreaseSavingsAdvice(in.Income, in.TotalExpenses),
			ReduceExpenses:  ReduceExpensesAdvice(in.TotalExpenses),
			AssetAllocation: AssetAllocationAdvice(tolerance),
			Insurance:       InsuranceAdvice(in.Income, in.TotalExpenses),
			EmergencyFund:   EmergencyFundAdvice(in.Income),
		},
	}

	suggestions := make([]string, 0, len(report.Flags)+len(report.Stability)+5)
	suggestions = append(suggestions, report.Flags...)
	suggestions = append(suggestions, report.Stability...)
	suggestions = append(suggestions,
		"Increase Savings: "+report.Guidance.IncreaseSavings,
		"Reduce Expenses: "+report.Guidance.ReduceExpenses,
		"Invest in Stable Assets: "+report.Guidance.AssetAllocation,
		"Get Insurance: "+report.Guidance.Insurance,
		"Build Emergency Fund: "+report.Guidance.EmergencyFund,
	)
	report.Suggestions = suggestions
	return report
}
