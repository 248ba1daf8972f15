package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/finance-advisor/internal/config"
	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/output"
	"github.com/iwvelando/finance-advisor/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries the persistent flags and the state prepared before every
// subcommand runs.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	cfg    *config.Configuration
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "finance-advisor",
		Short:         "Personal finance advisor",
		Long:          "Track savings goals and expenses, estimate Indian income tax and get investment advice.",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", constants.DefaultConfigFile, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.outputFormat, "output-format", "", "Output format (pretty, csv); defaults to the configured format")

	rootCmd.AddCommand(
		newServeCmd(a),
		newTaxCmd(a),
		newAdviseCmd(a),
		newClassifyCmd(a),
		newCompareCmd(a),
	)
	return rootCmd
}

// setup loads the configuration, builds the logger and resolves the output
// format. A missing default config file is not an error.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadConfiguration(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := initializeLogger(cfg.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if warnings := cfg.ValidateConfiguration(); len(warnings) > 0 {
		for _, warning := range warnings {
			logger.Warn("configuration validation warning",
				zap.String("op", "main"),
				zap.String("warning", warning),
			)
		}
	}

	if a.outputFormat == "" {
		a.outputFormat = cfg.Output.Format
		if validation.ValidateOutputFormat(a.outputFormat) != nil {
			a.outputFormat = constants.OutputFormatPretty
		}
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		cfg.Storage.Path = constants.DefaultStoragePath
	}

	logger.Debug("configuration loaded",
		zap.String("op", "main"),
		zap.String("config_file", path),
		zap.String("output_format", a.outputFormat),
	)
	return nil
}

func (a *app) writer(cmd *cobra.Command) *output.Writer {
	return output.NewWriter(cmd.OutOrStdout(), a.outputFormat)
}
