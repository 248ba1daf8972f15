// Package constants provides shared constants for the finance-advisor application.
package constants

// MonthKeyLayout is the format of savings ledger keys and comparison labels.
const MonthKeyLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DefaultTimeframeMonths is used when a savings goal has no usable timeframe
	DefaultTimeframeMonths = 12

	// EmergencyFundMonths is the number of months an emergency fund should cover
	EmergencyFundMonths = 6

	// CurrencySymbol prefixes formatted amounts
	CurrencySymbol = "₹"
)

// Goal feasibility thresholds, expressed as a feasibility score percentage.
const (
	FeasibilityOnTrack   = 100.0
	FeasibilityNearGoal  = 75.0
	FeasibilityMaxScore  = 100.0
	ProgressMaxPercent   = 100.0
	PercentageMultiplier = 100.0
)

// Spending-pattern thresholds (secondary total as a percentage of primary total).
const (
	HighDiscretionaryRatio     = 50.0
	ModerateDiscretionaryRatio = 30.0
)

// Investment capacity thresholds (disposable income as a percentage of income).
const (
	LowInvestmentCapacity      = 10.0
	ModerateInvestmentCapacity = 30.0
)

// Expense flag thresholds, as a share of income or an inflation percentage.
const (
	EntertainmentShare  = 0.10
	TravelShare         = 0.10
	LifestyleShare      = 0.15
	SavingsBufferShare  = 0.20
	PrimaryExpenseShare = 0.50
	DiscretionaryShare  = 0.30
	ExpenseReviewShare  = 0.70
	InflationWarning    = 5.0
	InflationHigh       = 6.0
	TargetSavingsRate   = 20.0
	LowRiskBufferPct    = 20.0
	MediumRiskBufferPct = 10.0
)

// Insurance advice income/expense thresholds.
const (
	TermLifeIncomeThreshold   = 5000.0
	HealthExpenseThreshold    = 3000.0
	DisabilityIncomeThreshold = 10000.0
)

// Tax constants
const (
	// UsdToInr is the default conversion rate applied to foreign income
	UsdToInr = 86.84

	// StandardDeduction is subtracted from gross income under the new regime
	StandardDeduction = 75000.0

	// InvestmentDeductionCap caps section 80C investments under the old regime
	InvestmentDeductionCap = 150000.0

	// OtherDeductionCap caps other deductions (80D etc.) under the old regime
	OtherDeductionCap = 200000.0

	// HealthInsuranceDeduction is the 80D amount suggested in recommendations
	HealthInsuranceDeduction = 50000.0

	// NewRegimeTaxFreeIncome is the income below which the new regime owes nothing
	NewRegimeTaxFreeIncome = 1200000.0

	// LongTermGainsExemption is the long-term capital gains amount that is not taxed
	LongTermGainsExemption = 100000.0

	// LongTermGainsRate applies to long-term gains above the exemption
	LongTermGainsRate = 0.10

	// ShortTermGainsRate applies to the full short-term gain
	ShortTermGainsRate = 0.15

	// PPFRate, ELSSRate and FDRate are the reference returns quoted in tips
	PPFRate  = 7.1
	ELSSRate = 13.0
	FDRate   = 6.5

	// GoldPricePer10g is quoted in capital gains tips
	GoldPricePer10g = 66000.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. FINANCE_ADVISOR_STORAGE_PATH
	EnvPrefix = "FINANCE_ADVISOR"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum JSON request body (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultStoragePath is the default SQLite database location
	DefaultStoragePath = "./data/finance-advisor.db"

	// UserIDHeader carries the identity asserted by the upstream auth provider
	UserIDHeader = "X-User-ID"

	// DefaultCompareMonths is the comparison window when none is requested
	DefaultCompareMonths = 1

	// MaxCompareMonths bounds the month comparison window
	MaxCompareMonths = 24
)

// Validation constants
const (
	// MaxPlausibleInflation is the inflation rate above which a warning is raised
	MaxPlausibleInflation = 50.0
)
