// Package output renders tax estimates, advisor reports and month comparisons
// for the command line.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/iwvelando/finance-advisor/pkg/format"
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Writer renders results in one of the supported output formats.
type Writer struct {
	out    io.Writer
	format string
}

// NewWriter returns a writer for the given format. Unknown formats fall back
// to pretty output.
func NewWriter(out io.Writer, outputFormat string) *Writer {
	if outputFormat != constants.OutputFormatCSV {
		outputFormat = constants.OutputFormatPretty
	}
	return &Writer{out: out, format: outputFormat}
}

// TaxEstimate writes a tax estimate.
func (w *Writer) TaxEstimate(result tax.Result) error {
	rows := [][2]string{
		{"Regime", string(result.Regime)},
		{"Foreign income (converted)", format.Currency(result.ConvertedIncome)},
		{"Total income", format.Currency(result.TotalIncome)},
		{"Taxable income", format.Currency(result.TaxableIncome)},
		{"Income tax", format.Currency(result.IncomeTax)},
		{"Effective rate", format.Percent(result.EffectiveRate)},
		{"Tax under other regime", format.Currency(result.AlternativeTax)},
		{"Capital gains tax", format.Currency(result.CapitalGainsTax)},
		{"GST liability", format.Currency(result.GSTLiability)},
	}

	if w.format == constants.OutputFormatCSV {
		cw := csv.NewWriter(w.out)
		_ = cw.Write([]string{"field", "value"})
		for _, row := range rows {
			_ = cw.Write([]string{row[0], row[1]})
		}
		for _, tip := range allTips(result.Recommendations) {
			_ = cw.Write([]string{"recommendation", tip})
		}
		cw.Flush()
		return cw.Error()
	}

	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w.out, "--- Tax estimate ---\n")
	for _, row := range rows {
		_, _ = p.Fprintf(w.out, "%-27s | %s\n", row[0], row[1])
	}
	if tips := allTips(result.Recommendations); len(tips) > 0 {
		_, _ = p.Fprintf(w.out, "\nRecommendations:\n")
		for _, tip := range tips {
			_, _ = p.Fprintf(w.out, "  - %s\n", tip)
		}
	}
	return nil
}

// AdvisorReport writes an advisor report.
func (w *Writer) AdvisorReport(report advice.Report) error {
	if w.format == constants.OutputFormatCSV {
		cw := csv.NewWriter(w.out)
		_ = cw.Write([]string{"section", "text"})
		_ = cw.Write([]string{"risk", report.Risk.String()})
		_ = cw.Write([]string{"event", report.EventSuggestion})
		_ = cw.Write([]string{"spending", string(report.SpendingPattern)})
		_ = cw.Write([]string{"investment", investmentLine(report.Investment)})
		for _, s := range report.Suggestions {
			_ = cw.Write([]string{"suggestion", s})
		}
		cw.Flush()
		return cw.Error()
	}

	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w.out, "--- Financial advice (risk tolerance: %s) ---\n", report.RiskTolerance)
	_, _ = p.Fprintf(w.out, "Event risk       | %s\n", report.Risk)
	_, _ = p.Fprintf(w.out, "Event suggestion | %s\n", report.EventSuggestion)
	_, _ = p.Fprintf(w.out, "Spending pattern | %s\n", report.SpendingPattern)
	_, _ = p.Fprintf(w.out, "Investment       | %s\n", investmentLine(report.Investment))
	_, _ = p.Fprintf(w.out, "\nSuggestions:\n")
	for _, s := range report.Suggestions {
		_, _ = p.Fprintf(w.out, "  - %s\n", strings.ReplaceAll(s, "\n", "\n    "))
	}
	return nil
}

// MonthComparison writes month totals, oldest first.
func (w *Writer) MonthComparison(totals []finance.MonthTotal) error {
	if w.format == constants.OutputFormatCSV {
		cw := csv.NewWriter(w.out)
		_ = cw.Write([]string{"month", "total", "entries"})
		for _, total := range totals {
			_ = cw.Write([]string{total.Key, fmt.Sprintf("%.2f", total.Total), fmt.Sprintf("%d", total.Count)})
		}
		cw.Flush()
		return cw.Error()
	}

	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w.out, "Month    | Total           | Entries\n")
	_, _ = p.Fprintf(w.out, "_____    | _____________   | _______\n")
	for _, total := range totals {
		_, _ = p.Fprintf(w.out, "%-8s | %-15s | %d\n", total.Label, format.Currency(total.Total), total.Count)
	}
	return nil
}

func investmentLine(inv advice.InvestmentAdvice) string {
	return fmt.Sprintf("%s (%s)", inv.Suggestion, strings.Join(inv.Products, ", "))
}

func allTips(recs tax.Recommendations) []string {
	tips := make([]string, 0, len(recs.IncomeTax)+len(recs.CapitalGains)+len(recs.GST))
	tips = append(tips, recs.IncomeTax...)
	tips = append(tips, recs.CapitalGains...)
	tips = append(tips, recs.GST...)
	return tips
}
