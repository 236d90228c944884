// Package config provides configuration management for the YQL CLI.
//
// This package layers CLI-specific settings on top of the shared types in
// internal/config. SchemaConfig is re-exported here via a type alias for
// convenience.
package config

import (
	intconfig "github.com/leapstack-labs/yql/internal/config"
	"github.com/leapstack-labs/yql/internal/state"
)

// SchemaConfig is an alias for the shared live-schema configuration.
type SchemaConfig = intconfig.SchemaConfig

// CompletionConfig tunes the completion engine.
type CompletionConfig struct {
	Limit int `koanf:"limit"`
}

// LSPConfig holds configuration for the language server.
type LSPConfig struct {
	Watch bool `koanf:"watch"`
}

// ServeConfig holds configuration for the HTTP API.
type ServeConfig struct {
	Addr     string `koanf:"addr"`
	MaxConns int    `koanf:"max_conns"` // 0 means unlimited
}

// StateConfig locates the saved query and history database.
type StateConfig struct {
	Path     string `koanf:"path"`
	Disabled bool   `koanf:"disabled"`
}

// Config holds all CLI configuration options.
type Config struct {
	Catalog      string           `koanf:"catalog"`
	Schema       *SchemaConfig    `koanf:"schema"`
	Completion   CompletionConfig `koanf:"completion"`
	OutputFormat string           `koanf:"output"`
	Theme        string           `koanf:"theme"`
	Color        bool             `koanf:"color"`
	LogLevel     string           `koanf:"log_level"`
	Verbose      bool             `koanf:"verbose"`
	LSP          LSPConfig        `koanf:"lsp"`
	Serve        ServeConfig      `koanf:"serve"`
	State        StateConfig      `koanf:"state"`

	// ConfigFile is the config file that was loaded, if any.
	ConfigFile string `koanf:"-"`
	// ProjectRoot anchors relative paths such as Catalog.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput   = "auto" // Auto-detect: TTY=table, non-TTY=json
	DefaultLogLevel = "warn"
)

// Default returns the configuration used when nothing is loaded.
func Default() *Config {
	return &Config{
		Completion:   CompletionConfig{Limit: intconfig.DefaultCompletionLimit},
		OutputFormat: DefaultOutput,
		Theme:        intconfig.DefaultTheme,
		Color:        true,
		LogLevel:     DefaultLogLevel,
		LSP:          LSPConfig{Watch: true},
		Serve:        ServeConfig{Addr: intconfig.DefaultServeAddr},
		State:        StateConfig{Path: state.DefaultPath},
	}
}
