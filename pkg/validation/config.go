package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/format"
)

// ValidateCategory checks that an expense name belongs to the group it was
// filed under and returns a warning when it does not.
func ValidateCategory(name string, group finance.Category) string {
	got := finance.Classify(name)
	if got == group {
		return ""
	}
	return fmt.Sprintf("%s expense '%s' is classified as %s", group, name, got)
}

// ValidateInflation warns about inflation rates outside a plausible range.
func ValidateInflation(rate float64) string {
	if rate < 0 {
		return fmt.Sprintf("Inflation rate %.2f%% is negative", rate)
	}
	if rate > constants.MaxPlausibleInflation {
		return fmt.Sprintf("Inflation rate %.2f%% exceeds %.0f%% and is probably a typo",
			rate, constants.MaxPlausibleInflation)
	}
	return ""
}

// ProfileValidator collects the parts of a saved profile and goal that can be
// checked for plausibility.
type ProfileValidator struct {
	Income          float64
	ForeignIncome   float64
	InflationRate   float64
	LifeEvent       string
	Primary         map[string]float64
	Secondary       map[string]float64
	GoalAmount      float64
	TimeframeMonths int
}

// ValidateAll validates the entire profile and returns warnings. Warnings never
// block saving; they explain how the advisor will interpret the data.
func (pv *ProfileValidator) ValidateAll() []string {
	var warnings []string

	if pv.Income <= 0 && pv.ForeignIncome <= 0 {
		warnings = append(warnings, "No income recorded; savings ratios will be reported as 0")
	}

	if warning := ValidateInflation(pv.InflationRate); warning != "" {
		warnings = append(warnings, warning)
	}

	for _, name := range sortedNames(pv.Primary) {
		if warning := ValidateCategory(name, finance.Primary); warning != "" {
			warnings = append(warnings, warning)
		}
	}
	for _, name := range sortedNames(pv.Secondary) {
		if warning := ValidateCategory(name, finance.Secondary); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	if pv.LifeEvent != "" && advice.EventSuggestion(pv.LifeEvent) == advice.DefaultEventSuggestion {
		warnings = append(warnings, fmt.Sprintf("Life event '%s' has no specific recommendation", pv.LifeEvent))
	}

	if pv.GoalAmount > 0 && pv.TimeframeMonths > 0 {
		income := pv.Income + pv.ForeignIncome*constants.UsdToInr
		needed := pv.GoalAmount / float64(pv.TimeframeMonths)
		if income > 0 && needed > income {
			warnings = append(warnings, fmt.Sprintf("Goal needs %s per month, more than the recorded monthly income of %s",
				format.Currency(needed), format.Currency(income)))
		}
	}

	return warnings
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

