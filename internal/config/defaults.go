package config

import "strings"

// Default configuration values.
const (
	DefaultCompletionLimit = 10
	DefaultServeAddr       = ":8787"
	DefaultTheme           = "dark"
)

// DefaultSchemaForDriver returns the schema introspected when none is set.
func DefaultSchemaForDriver(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "pgx":
		return "public"
	default:
		return "main"
	}
}

// ApplyDefaults fills unset schema settings.
func (s *SchemaConfig) ApplyDefaults() {
	if s == nil || s.Driver == "" {
		return
	}
	s.Driver = strings.ToLower(s.Driver)
	if s.Schema == "" {
		s.Schema = DefaultSchemaForDriver(s.Driver)
	}
}
