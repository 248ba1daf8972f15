// Package validation checks user-supplied options and profiles at the edge of
// the application, before they reach the advice and tax calculations.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/finance-advisor/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateTag checks that value, ignoring case and surrounding whitespace, is
// one of allowed. The calculations fall back silently on unknown tags, so
// command-line flags are checked here instead.
func ValidateTag(name, value string, allowed ...string) error {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if normalized == candidate {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}
