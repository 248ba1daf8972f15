// Package config defines the configuration of finance-advisor and loads it from
// YAML, .env files and FINANCE_ADVISOR_* environment variables.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
	"github.com/iwvelando/finance-advisor/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for finance-advisor.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Tax     TaxConfig     `yaml:"tax,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"` // e.g. 256K, 1M
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	Path string `yaml:"path,omitempty"`
}

// TaxConfig holds tax estimation options.
type TaxConfig struct {
	UsdToInr float64 `yaml:"usdToInr,omitempty"`
}

// LoadConfiguration loads the YAML configuration at configPath. An empty path
// yields the defaults plus any environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("storage.path", constants.DefaultStoragePath)
	v.SetDefault("tax.usdToInr", constants.UsdToInr)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Logging.Level != "" {
		if err := validation.ValidateTag("logging.level", c.Logging.Level, "debug", "info", "warn", "error"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%v; info will be used", err))
		}
	}
	if c.Logging.Format != "" {
		if err := validation.ValidateTag("logging.format", c.Logging.Format, "json", "console"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%v; console will be used", err))
		}
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, fmt.Sprintf("%v; pretty will be used", err))
		}
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		warnings = append(warnings, fmt.Sprintf("storage.path is empty; %s will be used", constants.DefaultStoragePath))
	}
	if c.Tax.UsdToInr <= 0 {
		warnings = append(warnings, fmt.Sprintf("tax.usdToInr must be positive; %.2f will be used", constants.UsdToInr))
	}
	return warnings
}
