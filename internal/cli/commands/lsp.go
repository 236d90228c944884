package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	intconfig "github.com/leapstack-labs/yql/internal/config"
	"github.com/leapstack-labs/yql/internal/lsp"
	"github.com/leapstack-labs/yql/pkg/catalog"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC and provides
completion, semantic highlighting, hover and diagnostics. When a catalog
file is configured and lsp.watch is enabled, edits to the file are picked
up without restarting the server.`,
		Example: `  # Start LSP server (usually called by an editor)
  yql lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cmdCtx := NewCommandContext(cmd)
	logger := cmdCtx.Logger

	cat, err := cmdCtx.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	holder := catalog.NewHolder(cat)

	server := lsp.NewServer(os.Stdin, os.Stdout,
		lsp.WithCatalog(holder),
		lsp.WithLimit(cmdCtx.Cfg.CompletionLimit()),
		lsp.WithLogger(logger),
		lsp.WithVersion(version),
	)

	if !cmdCtx.Cfg.LSP.Watch || cmdCtx.Cfg.Catalog == "" {
		return server.Run()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	eg, egctx := errgroup.WithContext(ctx)
	watcher := intconfig.NewCatalogWatcher(cmdCtx.Cfg.Catalog, holder, logger)
	eg.Go(func() error {
		return watcher.Watch(egctx)
	})
	eg.Go(func() error {
		// The watcher stops once the client disconnects.
		defer cancel()
		return server.Run()
	})
	return eg.Wait()
}
