package main

import (
	"github.com/iwvelando/finance-advisor/pkg/tax"
	"github.com/iwvelando/finance-advisor/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTaxCmd(a *app) *cobra.Command {
	var (
		in      tax.Input
		regime  string
		holding string
	)

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Estimate income tax, capital gains tax and GST",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateTag("regime", regime, string(tax.RegimeOld), string(tax.RegimeNew)); err != nil {
				return err
			}
			if err := validation.ValidateTag("holding period", holding, string(tax.HoldingShort), string(tax.HoldingLong)); err != nil {
				return err
			}
			in.Regime = tax.ParseRegime(regime)
			in.HoldingPeriod = tax.ParseHoldingPeriod(holding)

			result := tax.Estimate(in, tax.Options{UsdToInr: a.cfg.Tax.UsdToInr})
			a.logger.Debug("tax estimated",
				zap.String("op", "main.tax"),
				zap.String("regime", string(result.Regime)),
				zap.Float64("total_income", result.TotalIncome),
			)
			return a.writer(cmd).TaxEstimate(result)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&in.Income, "income", 0, "Annual domestic income in rupees")
	flags.Float64Var(&in.ForeignIncome, "foreign-income", 0, "Annual foreign income in US dollars")
	flags.Float64Var(&in.Investments, "investments", 0, "Section 80C investments in rupees")
	flags.Float64Var(&in.Deductions, "deductions", 0, "Other deductions in rupees")
	flags.StringVar(&regime, "regime", string(tax.RegimeOld), "Tax regime (old, new)")
	flags.Float64Var(&in.CapitalGains, "capital-gains", 0, "Capital gains in rupees")
	flags.StringVar(&holding, "holding-period", string(tax.HoldingShort), "Holding period of the gains (short, long)")
	flags.Float64Var(&in.GST, "gst", 0, "GST collected in rupees")
	flags.Float64Var(&in.InputTaxCredit, "input-tax-credit", 0, "Input tax credit in rupees")
	return cmd
}
