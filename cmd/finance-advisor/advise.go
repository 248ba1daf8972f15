package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iwvelando/finance-advisor/internal/records"
	"github.com/iwvelando/finance-advisor/pkg/advice"
	"github.com/iwvelando/finance-advisor/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newAdviseCmd(a *app) *cobra.Command {
	var (
		profilePath string
		tolerance   string
	)

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Print the advisor report for a profile file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tolerance != "" {
				if err := validation.ValidateTag("risk tolerance", tolerance,
					string(advice.ToleranceLow), string(advice.ToleranceMedium), string(advice.ToleranceHigh)); err != nil {
					return err
				}
			}

			profile, err := loadProfileFile(profilePath)
			if err != nil {
				return err
			}
			for _, warning := range profile.Validator(nil).ValidateAll() {
				a.logger.Warn("profile validation warning",
					zap.String("op", "main.advise"),
					zap.String("warning", warning),
				)
			}

			if tolerance == "" {
				tolerance = profile.RiskTolerance
			}
			report := advice.BuildReport(profile.AdviceInput(a.cfg.Tax.UsdToInr), advice.ParseRiskTolerance(tolerance))
			return a.writer(cmd).AdvisorReport(report)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to a YAML or JSON profile document")
	cmd.Flags().StringVar(&tolerance, "risk-tolerance", "", "Override the profile's risk tolerance (low, medium, high)")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// loadProfileFile reads a profile document written in YAML or JSON. JSON is
// valid YAML, so both go through the YAML decoder before the document is
// handed to the versioned profile reader.
func loadProfileFile(path string) (records.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return records.Profile{}, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return records.Profile{}, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return records.Profile{}, fmt.Errorf("failed to convert profile %s: %w", path, err)
	}
	profile, err := records.DecodeProfile(encoded)
	if err != nil {
		return records.Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return profile, nil
}
