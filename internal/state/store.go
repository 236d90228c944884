// Package state persists saved queries and query history in SQLite.
//
// The schema is managed with embedded goose migrations; Open migrates the
// database before returning it.
package state

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a saved query does not exist.
var ErrNotFound = errors.New("saved query not found")

// ErrEmptyName is returned when saving a query without a name.
var ErrEmptyName = errors.New("saved query name is required")

// ErrEmptyQuery is returned when saving or recording a blank query.
var ErrEmptyQuery = errors.New("query text is empty")

// SavedQuery is a named query kept across sessions.
type SavedQuery struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Query     string    `json:"query" yaml:"query"`
	Favorite  bool      `json:"isFavorite" yaml:"favorite"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// HistoryEntry records one query submitted from the REPL, editor, or API.
type HistoryEntry struct {
	ID     int64     `json:"id" yaml:"id"`
	Query  string    `json:"query" yaml:"query"`
	Source string    `json:"source" yaml:"source"`
	RanAt  time.Time `json:"ranAt" yaml:"ran_at"`
}

// History sources.
const (
	SourceREPL   = "repl"
	SourceEditor = "edit"
	SourceAPI    = "api"
)

// Store is the persistence interface used by the CLI and the HTTP API.
type Store interface {
	// SaveQuery creates a saved query or replaces the text of the one with
	// the same name. The favorite flag is only set on creation.
	SaveQuery(ctx context.Context, name, query string, favorite bool) (*SavedQuery, error)
	// GetQuery looks a saved query up by ID or name.
	GetQuery(ctx context.Context, ref string) (*SavedQuery, error)
	// ListQueries returns saved queries, favorites first, then by name.
	ListQueries(ctx context.Context, favoritesOnly bool) ([]*SavedQuery, error)
	// SetFavorite marks or unmarks a saved query.
	SetFavorite(ctx context.Context, ref string, favorite bool) error
	// DeleteQuery removes a saved query by ID or name.
	DeleteQuery(ctx context.Context, ref string) error

	// AddHistory appends a history entry.
	AddHistory(ctx context.Context, query, source string) (*HistoryEntry, error)
	// ListHistory returns the most recent entries, newest first.
	ListHistory(ctx context.Context, limit int) ([]*HistoryEntry, error)
	// ClearHistory deletes every history entry and reports how many were removed.
	ClearHistory(ctx context.Context) (int64, error)

	Close() error
}
