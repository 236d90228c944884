package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/internal/api"
	intconfig "github.com/leapstack-labs/yql/internal/config"
	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/pkg/catalog"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tokenizer and completion engine over HTTP",
		Long: `Start the HTTP API used by browser-based editors.

Endpoints:
  GET  /healthz          liveness and catalog version
  GET  /api/catalog      active catalog
  GET  /api/events       server-sent catalog reload events
  POST /api/tokenize     {"source": "...", "segments": bool}
  POST /api/suggest      {"source": "...", "cursor": n, "limit": n}
  POST /api/highlight    {"source": "...", "theme": "dark|light"}
  /api/saved, /api/history  saved queries and history (needs the state store)

A configured catalog file is watched and reloaded while serving.`,
		Example: `  yql serve
  yql serve --addr 127.0.0.1:9000 --max-conns 64`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default :8787)")
	cmd.Flags().Int("max-conns", 0, "Maximum concurrent connections (0 = unlimited)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	cat, err := cmdCtx.Catalog(ctx)
	if err != nil {
		return err
	}
	holder := catalog.NewHolder(cat)

	var watcher *intconfig.CatalogWatcher
	if cfg.Catalog != "" {
		watcher = intconfig.NewCatalogWatcher(cfg.Catalog, holder, cmdCtx.Logger)
	}

	var store state.Store
	if s := cmdCtx.OptionalStore(ctx); s != nil {
		defer func() { _ = s.Close() }()
		store = s
	}

	server := api.NewServer(api.Config{
		Addr:     cfg.Serve.Addr,
		Catalogs: holder,
		Limit:    cfg.CompletionLimit(),
		MaxConns: cfg.Serve.MaxConns,
		Store:    store,
		Watcher:  watcher,
		Logger:   cmdCtx.Logger,
	})

	cmdCtx.Renderer.Success("serving on %s", cfg.Serve.Addr)
	return server.Serve(ctx)
}
