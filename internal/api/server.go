// Package api serves the tokenizer, completion engine, and saved queries
// over HTTP for browser-based editors.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/yql/internal/api/notifier"
	"github.com/leapstack-labs/yql/internal/config"
	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/pkg/catalog"
	"github.com/leapstack-labs/yql/pkg/complete"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Config holds configuration for the API server.
type Config struct {
	Addr     string
	Catalogs *catalog.Holder
	Limit    int
	MaxConns int

	// Store enables the saved query and history routes. Optional.
	Store state.Store
	// Watcher reloads the catalog while serving. Optional.
	Watcher *config.CatalogWatcher

	Logger *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	addr     string
	catalogs *catalog.Holder
	limit    int
	maxConns int
	store    state.Store
	watcher  *config.CatalogWatcher
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	s := &Server{
		addr:     cfg.Addr,
		catalogs: cfg.Catalogs,
		limit:    cfg.Limit,
		maxConns: cfg.MaxConns,
		store:    cfg.Store,
		watcher:  cfg.Watcher,
		notifier: notifier.New(),
		logger:   cfg.Logger,
	}
	if s.catalogs == nil {
		s.catalogs = catalog.NewHolder(nil)
	}
	if s.limit <= 0 {
		s.limit = complete.DefaultLimit
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.watcher != nil {
		s.watcher.OnReload = func(c *catalog.Catalog) {
			s.notifier.Publish(len(c.Relations()))
		}
	}
	return s
}

// Notifier returns the server's notifier for catalog change events.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.routes(r)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}
	s.logger.Info("starting API server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start catalog watcher if enabled
	if s.watcher != nil {
		eg.Go(func() error {
			return s.watcher.Watch(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs one line per request with slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
