// Package records defines the versioned documents persisted per user and the
// decoding of older document shapes into the current schema.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/iwvelando/finance-advisor/pkg/validation"
	"github.com/spf13/cast"
)

// SchemaVersion is the version written by this release.
const SchemaVersion = 2

// Document kinds stored per user.
const (
	KindProfile = "profile"
	KindGoal    = "goal"
)

var (
	// ErrCategoryConflict is returned when a category is filed as both primary and secondary.
	ErrCategoryConflict = errors.New("expense category appears in both primary and secondary groups")
	// ErrUnsupportedVersion is returned for documents written by a newer release.
	ErrUnsupportedVersion = errors.New("unsupported document version")
	// ErrMalformedDocument is returned when a document is not a JSON object.
	ErrMalformedDocument = errors.New("malformed document")
)

// Profile is a user's income, expenses and circumstances.
type Profile struct {
	Version       int                `json:"version" yaml:"version"`
	Income        float64            `json:"income" yaml:"income"`
	ForeignIncome float64            `json:"foreignIncome" yaml:"foreignIncome"`
	Investments   float64            `json:"investments" yaml:"investments"`
	InflationRate float64            `json:"inflationRate" yaml:"inflationRate"`
	LifeEvent     string             `json:"lifeEvent" yaml:"lifeEvent"`
	RiskTolerance string             `json:"riskTolerance" yaml:"riskTolerance"`
	Primary       map[string]float64 `json:"primary" yaml:"primary"`
	Secondary     map[string]float64 `json:"secondary" yaml:"secondary"`
}

// Goal is a savings target.
type Goal struct {
	Version         int     `json:"version" yaml:"version"`
	TargetAmount    float64 `json:"targetAmount" yaml:"targetAmount"`
	TimeframeMonths int     `json:"timeframeMonths" yaml:"timeframeMonths"`
}

// NewProfile returns an empty profile at the current schema version.
func NewProfile() Profile {
	return Profile{
		Version:       SchemaVersion,
		RiskTolerance: string(advice.ToleranceMedium),
		Primary:       map[string]float64{},
		Secondary:     map[string]float64{},
	}
}

// NewGoal returns an empty goal with the default timeframe.
func NewGoal() Goal {
	return Goal{Version: SchemaVersion, TimeframeMonths: constants.DefaultTimeframeMonths}
}

// Normalize applies defaults, coerces amounts and checks the category groups.
func (p *Profile) Normalize() error {
	p.Version = SchemaVersion
	p.Income = clampAmount(p.Income)
	p.ForeignIncome = clampAmount(p.ForeignIncome)
	p.Investments = clampAmount(p.Investments)
	p.InflationRate = mathutil.Finite(p.InflationRate)
	p.LifeEvent = strings.ToLower(strings.TrimSpace(p.LifeEvent))
	p.RiskTolerance = string(advice.ParseRiskTolerance(p.RiskTolerance))
	p.Primary = cleanAmounts(p.Primary)
	p.Secondary = cleanAmounts(p.Secondary)
	return checkConflicts(p.Primary, p.Secondary)
}

// Normalize applies defaults and coerces amounts.
func (g *Goal) Normalize() {
	g.Version = SchemaVersion
	g.TargetAmount = clampAmount(g.TargetAmount)
	if g.TimeframeMonths <= 0 {
		g.TimeframeMonths = constants.DefaultTimeframeMonths
	}
}

// MonthlyTarget is the amount to save each month to reach the goal.
func (g Goal) MonthlyTarget() float64 {
	return finance.MonthlyTarget(g.TargetAmount, g.TimeframeMonths)
}

// PrimaryTotal sums the primary expenses.
func (p Profile) PrimaryTotal() float64 {
	return finance.SumAmounts(finance.FromAmounts(p.Primary))
}

// SecondaryTotal sums the secondary expenses.
func (p Profile) SecondaryTotal() float64 {
	return finance.SumAmounts(finance.FromAmounts(p.Secondary))
}

// TotalIncome is local income plus foreign income converted at rate.
func (p Profile) TotalIncome(rate float64) float64 {
	return p.Income + tax.ConvertForeign(p.ForeignIncome, rate)
}

// AdviceInput builds the advisor snapshot for the profile. Named categories are
// looked up across both groups so a misfiled category still counts.
func (p Profile) AdviceInput(rate float64) advice.Input {
	primary := finance.FromAmounts(p.Primary)
	secondary := finance.FromAmounts(p.Secondary)
	amount := func(names ...string) float64 {
		total := 0.0
		for _, name := range names {
			total += primary.Amount(name) + secondary.Amount(name)
		}
		return total
	}

	primaryTotal := finance.SumAmounts(primary)
	secondaryTotal := finance.SumAmounts(secondary)
	return advice.Input{
		Income:            p.TotalIncome(rate),
		TotalExpenses:     primaryTotal + secondaryTotal,
		PrimaryExpenses:   primaryTotal,
		SecondaryExpenses: secondaryTotal,
		Entertainment:     amount("entertainment"),
		Travel:            amount("traveling", "travel"),
		Lifestyle:         amount("lifestyle", "luxury"),
		Medical:           amount("medical", "medication", "insurance"),
		InflationRate:     p.InflationRate,
		Event:             p.LifeEvent,
	}
}

// Validator returns the plausibility checks for the profile and an optional goal.
func (p Profile) Validator(goal *Goal) *validation.ProfileValidator {
	pv := &validation.ProfileValidator{
		Income:        p.Income,
		ForeignIncome: p.ForeignIncome,
		InflationRate: p.InflationRate,
		LifeEvent:     p.LifeEvent,
		Primary:       p.Primary,
		Secondary:     p.Secondary,
	}
	if goal != nil {
		pv.GoalAmount = goal.TargetAmount
		pv.TimeframeMonths = goal.TimeframeMonths
	}
	return pv
}

// EncodeProfile normalizes and serializes a profile at the current version.
func EncodeProfile(p Profile) ([]byte, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// EncodeGoal normalizes and serializes a goal at the current version.
func EncodeGoal(g Goal) ([]byte, error) {
	g.Normalize()
	return json.Marshal(g)
}

// DecodeProfile reads a profile document of any supported version.
func DecodeProfile(data []byte) (Profile, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return Profile{}, err
	}
	version, err := documentVersion(doc)
	if err != nil {
		return Profile{}, err
	}

	p := NewProfile()
	p.Income = amountField(doc, "income")
	p.InflationRate = mathutil.Finite(cast.ToFloat64(trimmed(doc["inflationRate"])))
	p.RiskTolerance = cast.ToString(doc["riskTolerance"])

	if version == 1 {
		decodeLegacyProfile(doc, &p)
	} else {
		p.ForeignIncome = amountField(doc, "foreignIncome")
		p.Investments = amountField(doc, "investments")
		p.LifeEvent = cast.ToString(doc["lifeEvent"])
		p.Primary = amountMap(doc["primary"])
		p.Secondary = amountMap(doc["secondary"])
	}

	if err := p.Normalize(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// decodeLegacyProfile maps the unversioned shapes. Expense groups were stored
// under "expenses" or "primaryExpenses" and "secondaryExpenses"; the advisor
// form stored flat fields with a single primary total.
func decodeLegacyProfile(doc map[string]any, p *Profile) {
	p.ForeignIncome = amountField(doc, "usdIncome") + amountField(doc, "foreignIncome")
	p.Investments = amountField(doc, "investments")
	p.LifeEvent = cast.ToString(doc["event"])

	for _, key := range []string{"expenses", "primaryExpenses"} {
		for name, amount := range amountMap(doc[key]) {
			p.Primary[name] += amount
		}
	}
	if total, ok := scalarAmount(doc["primaryExpenses"]); ok && total > 0 {
		p.Primary[legacyPrimaryTotal] += total
	}
	for _, name := range finance.PrimaryCategories() {
		if _, ok := doc[name]; ok {
			p.Primary[name] += amountField(doc, name)
		}
	}

	for name, amount := range amountMap(doc["secondaryExpenses"]) {
		p.Secondary[name] += amount
	}
	for field, name := range legacySecondaryFields {
		if _, ok := doc[field]; ok {
			p.Secondary[name] += amountField(doc, field)
		}
	}
}

// legacyPrimaryTotal holds a primary total that was stored without categories.
const legacyPrimaryTotal = "unspecified"

var legacySecondaryFields = map[string]string{
	"entertainment": "entertainment",
	"travel":        "travel",
	"lifestyle":     "lifestyle",
	"medical":       "medical",
	"otherExpenses": "misc",
}

// DecodeGoal reads a goal document of any supported version.
func DecodeGoal(data []byte) (Goal, error) {
	doc, err := decodeObject(data)
	if err != nil {
		return Goal{}, err
	}
	version, err := documentVersion(doc)
	if err != nil {
		return Goal{}, err
	}

	g := NewGoal()
	g.TargetAmount = amountField(doc, "targetAmount")
	timeframeKey := "timeframeMonths"
	if version == 1 {
		timeframeKey = "timeframe"
	}
	if months, err := cast.ToIntE(trimmed(doc[timeframeKey])); err == nil {
		g.TimeframeMonths = months
	}
	g.Normalize()
	return g, nil
}

func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}
	return doc, nil
}

// documentVersion reports the schema version; documents without one are v1.
func documentVersion(doc map[string]any) (int, error) {
	raw, ok := doc["version"]
	if !ok || raw == nil {
		return 1, nil
	}
	version, err := cast.ToIntE(trimmed(raw))
	if err != nil || version < 1 {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedVersion, raw)
	}
	if version > SchemaVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	return version, nil
}

func amountField(doc map[string]any, key string) float64 {
	return mathutil.ParseAmount(doc[key])
}

// amountMap coerces a nested object of category amounts. Anything that is not
// an object yields an empty map.
func amountMap(raw any) map[string]float64 {
	out := map[string]float64{}
	obj, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for name, value := range obj {
		out[name] = mathutil.ParseAmount(value)
	}
	return out
}

func scalarAmount(raw any) (float64, bool) {
	switch raw.(type) {
	case nil, map[string]any, []any:
		return 0, false
	}
	return mathutil.ParseAmount(raw), true
}

func trimmed(raw any) any {
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s)
	}
	if n, ok := raw.(json.Number); ok {
		return n.String()
	}
	return raw
}

func clampAmount(v float64) float64 {
	return mathutil.Max(0, mathutil.Finite(v))
}

// cleanAmounts drops empty names and coerces every amount.
func cleanAmounts(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for name, amount := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out[name] += clampAmount(amount)
	}
	return out
}

func checkConflicts(primary, secondary map[string]float64) error {
	seen := make(map[string]struct{}, len(primary))
	for name := range primary {
		seen[strings.ToLower(name)] = struct{}{}
	}
	var conflicts []string
	for name := range secondary {
		if _, ok := seen[strings.ToLower(name)]; ok {
			conflicts = append(conflicts, name)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return fmt.Errorf("%w: %s", ErrCategoryConflict, strings.Join(conflicts, ", "))
	}
	return nil
}
