package main

import (
	"encoding/csv"
	"fmt"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/finance"
	"github.com/spf13/cobra"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify NAME...",
		Short: "Show whether expense categories are primary or secondary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.outputFormat == constants.OutputFormatCSV {
				cw := csv.NewWriter(out)
				_ = cw.Write([]string{"name", "category"})
				for _, name := range args {
					_ = cw.Write([]string{name, string(finance.Classify(name))})
				}
				cw.Flush()
				return cw.Error()
			}
			for _, name := range args {
				if _, err := fmt.Fprintf(out, "%s: %s\n", name, finance.Classify(name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
