package advice

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
)

// RiskLevel is the exposure to a planned life event.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	default:
		return "High"
	}
}

// MarshalText renders the level by name in JSON and YAML.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a level name, ignoring case.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	default:
		return fmt.Errorf("unknown risk level %q", string(text))
	}
	return nil
}

// escalate raises the level by one, saturating at high.
func (r RiskLevel) escalate() RiskLevel {
	if r >= RiskHigh {
		return RiskHigh
	}
	return r + 1
}

// Life events the advisor knows about.
const (
	EventChildEducation     = "child_education"
	EventChildMarriage      = "child_marriage"
	EventBuyingCar          = "buying_car"
	EventMedicalEmergency   = "medical_emergency"
	EventHomeRenovation     = "home_renovation"
	EventJobLoss            = "job_loss"
	EventVacationPlanning   = "vacation_planning"
	EventRetirementPlanning = "retirement_planning"
	EventStartingBusiness   = "starting_a_business"
	EventBuyingHouse        = "buying_a_house"
)

var highImpactEvents = map[string]struct{}{
	EventChildEducation:     {},
	EventChildMarriage:      {},
	EventBuyingHouse:        {},
	EventRetirementPlanning: {},
}

var eventSuggestions = map[string]string{
	EventChildEducation:     "Consider starting an education fund or investing in long-term savings plans.",
	EventChildMarriage:      "Plan early with investments in gold, fixed deposits, or mutual funds.",
	EventBuyingCar:          "Check loan options and balance EMIs within 15-20% of your monthly income.",
	EventMedicalEmergency:   "Ensure you have sufficient health insurance and an emergency fund.",
	EventHomeRenovation:     "Consider cost-effective renovation plans and assess mortgage or personal loan options.",
	EventJobLoss:            "Create an emergency fund covering at least 6 months of expenses and reduce discretionary spending.",
	EventVacationPlanning:   "Save in advance using recurring deposits or travel funds to avoid financial strain.",
	EventRetirementPlanning: "Increase investments in pension plans, long-term funds, and diversify for secure post-retirement life.",
	EventStartingBusiness:   "Assess startup costs, secure funding sources, and manage financial risks wisely.",
	EventBuyingHouse:        "Check mortgage options, calculate EMI affordability, and plan down payments accordingly.",
}

// DefaultEventSuggestion is returned for events without a dedicated suggestion.
const DefaultEventSuggestion = "No specific recommendation for this event."

func normalizeEvent(event string) string {
	return strings.ToLower(strings.TrimSpace(event))
}

// EventSuggestion returns the planning suggestion for a life event.
func EventSuggestion(event string) string {
	if suggestion, ok := eventSuggestions[normalizeEvent(event)]; ok {
		return suggestion
	}
	return DefaultEventSuggestion
}

// IsHighImpactEvent reports whether the event raises the assessed risk.
func IsHighImpactEvent(event string) bool {
	_, ok := highImpactEvents[normalizeEvent(event)]
	return ok
}

// AssessEventRisk derives a risk level from the savings buffer, raised once for
// high inflation and once for a high-impact life event.
func AssessEventRisk(in Input) RiskLevel {
	in = in.normalized()
	buffer := in.SavingsRate()

	var level RiskLevel
	switch {
	case buffer > constants.LowRiskBufferPct:
		level = RiskLow
	case buffer >= constants.MediumRiskBufferPct:
		level = RiskMedium
	default:
		level = RiskHigh
	}

	if in.InflationRate > constants.InflationHigh {
		level = level.escalate()
	}
	if IsHighImpactEvent(in.Event) {
		level = level.escalate()
	}
	return level
}
