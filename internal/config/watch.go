package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/yql/pkg/catalog"
)

// DefaultDebounce is the quiet period after the last file event before the
// catalog is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// CatalogWatcher reloads a catalog file into a Holder whenever it changes.
type CatalogWatcher struct {
	path     string
	holder   *catalog.Holder
	logger   *slog.Logger
	debounce time.Duration

	// OnReload is called after a successful swap. Optional.
	OnReload func(*catalog.Catalog)
}

// NewCatalogWatcher creates a watcher for path publishing into holder.
func NewCatalogWatcher(path string, holder *catalog.Holder, logger *slog.Logger) *CatalogWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CatalogWatcher{
		path:     path,
		holder:   holder,
		logger:   logger,
		debounce: DefaultDebounce,
	}
}

// Reload reads the catalog file once and swaps it in. On error the current
// catalog stays in place.
func (w *CatalogWatcher) Reload() error {
	c, err := LoadCatalog(w.path)
	if err != nil {
		return err
	}
	w.holder.Swap(c)
	w.logger.Info("catalog reloaded", "file", w.path, "relations", len(c.Relations()))
	if w.OnReload != nil {
		w.OnReload(c)
	}
	return nil
}

// Watch blocks until ctx is cancelled. The parent directory is watched
// rather than the file so that editors which replace the file on save are
// still observed.
func (w *CatalogWatcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.logger.Debug("watching catalog", "file", abs)

	// Reloads run on this goroutine, so none can still be in flight once
	// Watch has returned.
	var (
		debounceTimer *time.Timer
		fire          <-chan time.Time
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			fire = nil
			if err := w.Reload(); err != nil {
				w.logger.Error("catalog reload failed, keeping previous catalog", "error", err)
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(w.debounce)
			} else {
				debounceTimer.Reset(w.debounce)
			}
			fire = debounceTimer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
