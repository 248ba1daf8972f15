package tax

import (
	"fmt"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/format"
	"github.com/iwvelando/finance-advisor/pkg/mathutil"
)

// Input is an annual tax scenario. Amounts are rupees unless noted.
type Input struct {
	Income         float64       `json:"income" yaml:"income"`
	ForeignIncome  float64       `json:"foreignIncome" yaml:"foreignIncome"` // USD
	Investments    float64       `json:"investments" yaml:"investments"`
	Deductions     float64       `json:"deductions" yaml:"deductions"`
	Regime         Regime        `json:"regime" yaml:"regime"`
	CapitalGains   float64       `json:"capitalGains" yaml:"capitalGains"`
	HoldingPeriod  HoldingPeriod `json:"holdingPeriod" yaml:"holdingPeriod"`
	GST            float64       `json:"gst" yaml:"gst"`
	InputTaxCredit float64       `json:"inputTaxCredit" yaml:"inputTaxCredit"`
}

// Options tune an estimate.
type Options struct {
	// UsdToInr converts foreign income. Non-positive values use the default rate.
	UsdToInr float64
}

// DefaultOptions returns options with the default exchange rate.
func DefaultOptions() Options {
	return Options{UsdToInr: constants.UsdToInr}
}

func (o Options) rate() float64 {
	if mathutil.Finite(o.UsdToInr) <= 0 {
		return constants.UsdToInr
	}
	return o.UsdToInr
}

// Recommendations are tax-saving tips grouped by area.
type Recommendations struct {
	IncomeTax    []string `json:"incomeTax"`
	CapitalGains []string `json:"capitalGains"`
	GST          []string `json:"gst"`
}

// Result is a complete estimate.
type Result struct {
	Regime          Regime          `json:"regime"`
	ConvertedIncome float64         `json:"convertedForeignIncome"`
	TotalIncome     float64         `json:"totalIncome"`
	TaxableIncome   float64         `json:"taxableIncome"`
	IncomeTax       float64         `json:"incomeTax"`
	EffectiveRate   float64         `json:"effectiveRate"`
	AlternativeTax  float64         `json:"alternativeRegimeTax"`
	CapitalGainsTax float64         `json:"capitalGainsTax"`
	GSTLiability    float64         `json:"gstLiability"`
	Recommendations Recommendations `json:"recommendations"`
}

// Estimate computes income tax for the chosen regime, the tax under the other
// regime for comparison, capital gains tax and GST liability.
func Estimate(in Input, opts Options) Result {
	regime := ParseRegime(string(in.Regime))
	converted := ConvertForeign(in.ForeignIncome, opts.rate())
	total := mathutil.Max(0, mathutil.Finite(in.Income)) + converted

	taxable := TaxableIncome(total, in.Investments, in.Deductions, regime)
	incomeTax := ProgressiveTax(taxable, regime.Table())

	other := RegimeOld
	if regime == RegimeOld {
		other = RegimeNew
	}
	alternative := ProgressiveTax(TaxableIncome(total, in.Investments, in.Deductions, other), other.Table())

	return Result{
		Regime:          regime,
		ConvertedIncome: converted,
		TotalIncome:     total,
		TaxableIncome:   taxable,
		IncomeTax:       incomeTax,
		EffectiveRate:   mathutil.CalculatePercentage(incomeTax, total),
		AlternativeTax:  alternative,
		CapitalGainsTax: CapitalGainsTax(in.CapitalGains, in.HoldingPeriod),
		GSTLiability:    GSTLiability(in.GST, in.InputTaxCredit),
		Recommendations: Recommend(in, total, opts),
	}
}

// Recommend produces tax-saving tips for a scenario whose total income,
// including converted foreign income, is already known.
func Recommend(in Input, totalIncome float64, opts Options) Recommendations {
	investments := mathutil.Max(0, mathutil.Finite(in.Investments))
	deductions := mathutil.Max(0, mathutil.Finite(in.Deductions))
	foreign := mathutil.Max(0, mathutil.Finite(in.ForeignIncome))
	gains := mathutil.Max(0, mathutil.Finite(in.CapitalGains))

	recs := Recommendations{
		IncomeTax:    make([]string, 0),
		CapitalGains: make([]string, 0),
		GST:          make([]string, 0),
	}

	if investments < constants.InvestmentDeductionCap {
		recs.IncomeTax = append(recs.IncomeTax, fmt.Sprintf(
			"Invest %s more in PPF @ %.1f%% for tax-free returns.",
			format.Currency(constants.InvestmentDeductionCap-investments), constants.PPFRate))
	}
	if deductions < constants.HealthInsuranceDeduction {
		recs.IncomeTax = append(recs.IncomeTax, fmt.Sprintf(
			"Add health insurance (80D) up to %s for deductions.", format.Currency(constants.HealthInsuranceDeduction)))
	}
	if totalIncome > constants.NewRegimeTaxFreeIncome && investments+deductions < constants.InvestmentDeductionCap {
		recs.IncomeTax = append(recs.IncomeTax, fmt.Sprintf(
			"Switch to new regime or boost investments (e.g., ELSS @ %.0f%% avg return).", constants.ELSSRate))
	}
	if foreign > 0 {
		rate := opts.rate()
		recs.IncomeTax = append(recs.IncomeTax, fmt.Sprintf(
			"USD %s converts to %s at %s/USD.",
			format.NumericCurrency(foreign), format.Currency(foreign*rate), format.Currency(rate)))
	}
	if gains > constants.LongTermGainsExemption {
		recs.CapitalGains = append(recs.CapitalGains, fmt.Sprintf(
			"Gold at %s/10g. Time sales to optimize gains.", format.Currency(constants.GoldPricePer10g)))
	}
	if mathutil.Finite(in.InputTaxCredit) > mathutil.Finite(in.GST) {
		recs.GST = append(recs.GST, "Input tax credit exceeds GST collected. Carry the excess credit forward.")
	}
	if gains > 0 && ParseHoldingPeriod(string(in.HoldingPeriod)) == HoldingShort {
		recs.CapitalGains = append(recs.CapitalGains, fmt.Sprintf(
			"Holding for more than a year moves gains to the long-term rate. Park proceeds in FDs @ %.1f%% meanwhile.",
			constants.FDRate))
	}
	return recs
}
