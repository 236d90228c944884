package config

import (
	"fmt"
	"os"
	"strings"

	intconfig "github.com/leapstack-labs/yql/internal/config"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "table", "json", "yaml"}

// LogLevels lists the accepted values of the log_level setting.
var LogLevels = []string{"debug", "info", "warn", "error"}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !oneOf(c.OutputFormat, OutputFormats) {
		return fmt.Errorf("invalid output format %q (expected one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if !oneOf(c.Theme, []string{"dark", "light"}) {
		return fmt.Errorf("invalid theme %q (expected dark or light)", c.Theme)
	}
	if !oneOf(c.LogLevel, LogLevels) {
		return fmt.Errorf("invalid log level %q (expected one of %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	if c.Completion.Limit <= 0 {
		return fmt.Errorf("completion.limit must be positive, got %d", c.Completion.Limit)
	}
	if c.Serve.MaxConns < 0 {
		return fmt.Errorf("serve.max_conns must not be negative, got %d", c.Serve.MaxConns)
	}
	if !c.State.Disabled && c.State.Path == "" {
		return fmt.Errorf("state.path is required unless state.disabled is set")
	}
	if c.Catalog != "" && c.Schema.Enabled() {
		return fmt.Errorf("catalog and schema.driver are mutually exclusive")
	}
	if err := c.Schema.Validate(); err != nil {
		return fmt.Errorf("invalid schema configuration: %w", err)
	}
	return nil
}

// ValidateCatalogFile checks that the configured catalog file exists.
func (c *Config) ValidateCatalogFile() error {
	if c.Catalog == "" {
		return nil
	}
	if _, err := os.Stat(c.Catalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog file does not exist: %s\nHint: Create the file or use --catalog to specify a different path", c.Catalog)
	}
	return nil
}

// CompletionLimit returns the configured limit, falling back to the default.
func (c *Config) CompletionLimit() int {
	if c == nil || c.Completion.Limit <= 0 {
		return intconfig.DefaultCompletionLimit
	}
	return c.Completion.Limit
}
