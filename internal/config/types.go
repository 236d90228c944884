// Package config provides shared configuration types for YQL.
// This package is decoupled from CLI concerns and can be used by the LSP
// and the HTTP API to load catalog files and schema settings.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/yql/internal/schema"
)

// SchemaConfig selects a live database whose tables become the catalog.
type SchemaConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres, duckdb
	DSN    string `koanf:"dsn"`    // driver-specific data source name
	Schema string `koanf:"schema"` // schema to introspect; empty selects the driver default
}

// Enabled reports whether a database was configured.
func (s *SchemaConfig) Enabled() bool {
	return s != nil && s.Driver != ""
}

// Validate checks that the driver is known and a DSN is present.
func (s *SchemaConfig) Validate() error {
	if !s.Enabled() {
		return nil
	}
	if !schema.IsSupported(s.Driver) {
		return fmt.Errorf("%w: %q (available: %s)", schema.ErrUnsupportedDriver, s.Driver, strings.Join(schema.Drivers(), ", "))
	}
	if s.DSN == "" {
		return fmt.Errorf("schema.dsn is required for driver %s", s.Driver)
	}
	return nil
}
