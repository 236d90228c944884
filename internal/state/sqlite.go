package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultPath is the state database location relative to the project root.
const DefaultPath = ".yql/state.db"

// timeLayout is how timestamps are stored. Fixed width keeps TEXT ordering
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) and migrates the database at path.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- Saved queries ---

const savedColumns = `id, name, query, favorite, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSaved(row rowScanner) (*SavedQuery, error) {
	q := &SavedQuery{}
	var created, updated string
	if err := row.Scan(&q.ID, &q.Name, &q.Query, &q.Favorite, &created, &updated); err != nil {
		return nil, err
	}
	q.CreatedAt = parseTime(created)
	q.UpdatedAt = parseTime(updated)
	return q, nil
}

// SaveQuery creates or updates a saved query by name.
func (s *SQLiteStore) SaveQuery(ctx context.Context, name, query string, favorite bool) (*SavedQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	now := s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_queries (id, name, query, favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET query = excluded.query, updated_at = excluded.updated_at`,
		generateID(), name, query, favorite, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save query: %w", err)
	}
	return s.GetQuery(ctx, name)
}

// GetQuery retrieves a saved query by ID or name.
func (s *SQLiteStore) GetQuery(ctx context.Context, ref string) (*SavedQuery, error) {
	q, err := scanSaved(s.db.QueryRowContext(ctx,
		`SELECT `+savedColumns+` FROM saved_queries WHERE id = ? OR name = ? LIMIT 1`,
		ref, ref,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved query: %w", err)
	}
	return q, nil
}

// ListQueries returns saved queries, favorites first.
func (s *SQLiteStore) ListQueries(ctx context.Context, favoritesOnly bool) ([]*SavedQuery, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_queries`
	if favoritesOnly {
		query += ` WHERE favorite = 1`
	}
	query += ` ORDER BY favorite DESC, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	queries := []*SavedQuery{}
	for rows.Next() {
		q, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved query: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// SetFavorite marks or unmarks a saved query.
func (s *SQLiteStore) SetFavorite(ctx context.Context, ref string, favorite bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE saved_queries SET favorite = ?, updated_at = ? WHERE id = ? OR name = ?`,
		favorite, s.timestamp(), ref, ref,
	)
	if err != nil {
		return fmt.Errorf("failed to update saved query: %w", err)
	}
	return requireAffected(result, ref)
}

// DeleteQuery removes a saved query by ID or name.
func (s *SQLiteStore) DeleteQuery(ctx context.Context, ref string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE id = ? OR name = ?`, ref, ref)
	if err != nil {
		return fmt.Errorf("failed to delete saved query: %w", err)
	}
	return requireAffected(result, ref)
}

func requireAffected(result sql.Result, ref string) error {
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return nil
}

// --- History ---

// AddHistory appends a history entry.
func (s *SQLiteStore) AddHistory(ctx context.Context, query, source string) (*HistoryEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	now := s.timestamp()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO query_history (query, source, ran_at) VALUES (?, ?, ?)`,
		query, source, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	return &HistoryEntry{ID: id, Query: query, Source: source, RanAt: parseTime(now)}, nil
}

// ListHistory returns up to limit entries, newest first. limit <= 0 returns all.
func (s *SQLiteStore) ListHistory(ctx context.Context, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, source, ran_at FROM query_history ORDER BY ran_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []*HistoryEntry{}
	for rows.Next() {
		e := &HistoryEntry{}
		var ranAt string
		if err := rows.Scan(&e.ID, &e.Query, &e.Source, &ranAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.RanAt = parseTime(ranAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory deletes every history entry.
func (s *SQLiteStore) ClearHistory(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM query_history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}
