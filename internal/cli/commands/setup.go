// Package commands implements the yql subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/internal/cli/config"
	"github.com/leapstack-labs/yql/internal/cli/output"
	intconfig "github.com/leapstack-labs/yql/internal/config"
	"github.com/leapstack-labs/yql/internal/schema"
	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/pkg/catalog"
)

// errStateDisabled is returned by commands that need the state store when
// state.disabled is set.
var errStateDisabled = errors.New("state store is disabled (unset state.disabled or --no-state)")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	r.SetColor(cfg.Color)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: r,
	}
}

// Catalog resolves the configured catalog: a catalog file, a live database
// schema, or the built-in NFL catalog.
func (c *CommandContext) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	switch {
	case c.Cfg.Catalog != "":
		if err := c.Cfg.ValidateCatalogFile(); err != nil {
			return nil, err
		}
		c.Logger.Debug("loading catalog file", slog.String("path", c.Cfg.Catalog))
		return intconfig.LoadCatalog(c.Cfg.Catalog)
	case c.Cfg.Schema.Enabled():
		s := c.Cfg.Schema
		return schema.Load(ctx, s.Driver, s.DSN, s.Schema, c.Logger)
	default:
		return catalog.Default(), nil
	}
}

// OpenStore opens the state database. Callers must close the store.
func (c *CommandContext) OpenStore(ctx context.Context) (state.Store, error) {
	if c.Cfg.State.Disabled {
		return nil, errStateDisabled
	}
	store, err := state.Open(ctx, c.Cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, nil
}

// OptionalStore is OpenStore for commands that work without history. Open
// failures are logged and yield a nil store.
func (c *CommandContext) OptionalStore(ctx context.Context) state.Store {
	if c.Cfg.State.Disabled {
		return nil
	}
	store, err := c.OpenStore(ctx)
	if err != nil {
		c.Logger.Warn("state store unavailable, history will not be recorded", slog.Any("error", err))
		return nil
	}
	return store
}

// readSource returns the text named by args: a file path, "-" or nothing
// for stdin.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// argOrStdin joins args into one text, or reads stdin when args is empty or "-".
func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		return readSource(cmd, nil)
	}
	return strings.Join(args, " "), nil
}
