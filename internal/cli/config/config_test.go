package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/yql/internal/schema"
)

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("catalog", "", "")
	fs.String("schema-driver", "", "")
	fs.String("schema-dsn", "", "")
	fs.StringP("output", "o", "", "")
	fs.String("theme", "", "")
	fs.String("log-level", "", "")
	fs.BoolP("verbose", "v", false, "")
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "yql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, "dark", cfg.Theme)
	assert.True(t, cfg.Color)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 10, cfg.Completion.Limit)
	assert.True(t, cfg.LSP.Watch)
	assert.Equal(t, ":8787", cfg.Serve.Addr)
	assert.Zero(t, cfg.Serve.MaxConns)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, ".yql", "state.db"), cfg.State.Path)
	assert.False(t, cfg.State.Disabled)
	assert.Empty(t, cfg.Catalog)
	assert.Empty(t, cfg.ConfigFile)
	assert.False(t, cfg.Schema.Enabled())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
catalog: schemas/nfl.yaml
output: json
theme: light
completion:
  limit: 5
lsp:
  watch: false
serve:
  addr: 127.0.0.1:9000
  max_conns: 32
state:
  path: data/state.db
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, filepath.Join(dir, "schemas", "nfl.yaml"), cfg.Catalog)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, 5, cfg.Completion.Limit)
	assert.False(t, cfg.LSP.Watch)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.Equal(t, 32, cfg.Serve.MaxConns)
	assert.Equal(t, filepath.Join(dir, "data", "state.db"), cfg.State.Path)
}

func TestLoadConfigStateFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := newFlags()
	flags.String("state", "", "")
	flags.Bool("no-state", false, "")
	flags.Int("max-conns", 0, "")
	require.NoError(t, flags.Parse([]string{"--state", ":memory:", "--no-state", "--max-conns", "4"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.State.Path, "memory path is not anchored")
	assert.True(t, cfg.State.Disabled)
	assert.Equal(t, 4, cfg.Serve.MaxConns)
}

func TestLoadConfigSearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "output: yaml\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.ConfigFile)
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
	assert.Equal(t, "yaml", cfg.OutputFormat)
}

func TestLoadConfigFindsCatalogNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "theme: dark\n")
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("keywords: [SELECT]\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, catalogPath, cfg.Catalog)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
output: json
theme: light
log_level: info
`)
	t.Setenv("YQL_OUTPUT", "yaml")
	t.Setenv("YQL_THEME", "dark")
	t.Setenv("YQL_COMPLETION_LIMIT", "7")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--output", "table"}))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.OutputFormat, "flag beats env")
	assert.Equal(t, "dark", cfg.Theme, "env beats file")
	assert.Equal(t, "info", cfg.LogLevel, "file beats default")
	assert.Equal(t, 7, cfg.Completion.Limit, "nested env key")
}

func TestLoadConfigSchemaFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NFL_DB", "/data/nfl.db")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--schema-driver", "SQLite", "--schema-dsn", "${NFL_DB}"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	require.True(t, cfg.Schema.Enabled())
	assert.Equal(t, "sqlite", cfg.Schema.Driver)
	assert.Equal(t, "/data/nfl.db", cfg.Schema.DSN)
	assert.Equal(t, "main", cfg.Schema.Schema)
}

func TestLoadConfigVerboseForcesDebug(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"-v"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"bad output", "output: xml\n", "invalid output format"},
		{"bad theme", "theme: neon\n", "invalid theme"},
		{"bad log level", "log_level: loud\n", "invalid log level"},
		{"bad limit", "completion:\n  limit: 0\n", "completion.limit must be positive"},
		{"bad driver", "schema:\n  driver: oracle\n  dsn: x\n", "unsupported schema driver"},
		{"missing dsn", "schema:\n  driver: postgres\n", "schema.dsn is required"},
		{"negative max conns", "serve:\n  max_conns: -1\n", "serve.max_conns must not be negative"},
		{"empty state path", "state:\n  path: \"\"\n", "state.path is required"},
		{"catalog and schema", "catalog: c.yaml\nschema:\n  driver: sqlite\n  dsn: x.db\n", "mutually exclusive"},
		{"malformed yaml", "output: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestSchemaValidationWrapsSentinel(t *testing.T) {
	cfg := Default()
	cfg.Schema = &SchemaConfig{Driver: "mysql", DSN: "x"}
	assert.ErrorIs(t, cfg.Validate(), schema.ErrUnsupportedDriver)
}

func TestValidateCatalogFile(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.ValidateCatalogFile())

	cfg.Catalog = filepath.Join(t.TempDir(), "missing.yaml")
	assert.ErrorContains(t, cfg.ValidateCatalogFile(), "catalog file does not exist")
}

func TestCompletionLimit(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, 10, nilCfg.CompletionLimit())
	assert.Equal(t, 10, (&Config{}).CompletionLimit())
	assert.Equal(t, 3, (&Config{Completion: CompletionConfig{Limit: 3}}).CompletionLimit())
}

func TestEnvAndFlagKeys(t *testing.T) {
	assert.Equal(t, "schema.dsn", envKey("YQL_SCHEMA_DSN"))
	assert.Equal(t, "log_level", envKey("YQL_LOG_LEVEL"))
	assert.Equal(t, "serve.addr", envKey("YQL_SERVE_ADDR"))
	assert.Equal(t, "serve.max_conns", envKey("YQL_SERVE_MAX_CONNS"))
	assert.Equal(t, "state.path", envKey("YQL_STATE_PATH"))
	assert.Equal(t, "state.path", flagKey("state"))
	assert.Equal(t, "serve.addr", flagKey("addr"))
	assert.Equal(t, "schema.driver", flagKey("schema-driver"))
	assert.Equal(t, "log_level", flagKey("log-level"))
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("YQL_TEST_PASSWORD", "secret")
	assert.Equal(t, "postgres://u:secret@h/db", expandEnvVars("postgres://u:${YQL_TEST_PASSWORD}@h/db"))
	assert.Equal(t, "${YQL_TEST_UNSET}", expandEnvVars("${YQL_TEST_UNSET}"))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	GetLogger(ctx).Debug("hidden")
	GetLogger(ctx).Info("shown", slog.String("k", "v"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	assert.NotNil(t, GetLogger(context.Background()))
	assert.Equal(t, slog.LevelWarn, ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
}

func TestConfigContext(t *testing.T) {
	cfg := Default()
	cfg.Theme = "light"

	ctx := WithConfig(context.Background(), cfg)
	assert.Same(t, cfg, GetConfig(ctx))
	assert.Equal(t, "dark", GetConfig(context.Background()).Theme)
}
