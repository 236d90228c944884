// Package schema builds YQL catalogs from live database schemas.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver, registered as "pgx"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // SQLite driver (pure Go)

	"github.com/leapstack-labs/yql/pkg/catalog"
)

// ErrUnsupportedDriver is returned for a driver name this package cannot open.
var ErrUnsupportedDriver = errors.New("unsupported schema driver")

// ErrNoRelations is returned when introspection finds no tables.
var ErrNoRelations = errors.New("no relations found")

// dialect describes how to list columns for one database family.
type dialect struct {
	name          string
	driver        string // database/sql driver name
	defaultSchema string
	query         string // returns (table, column) rows ordered by table then position
	usesSchema    bool   // query takes the schema name as its only argument
}

var dialects = map[string]dialect{
	"sqlite": {
		name:          "sqlite",
		driver:        "sqlite",
		defaultSchema: "main",
		query: `
		SELECT m.name, p.name
		FROM sqlite_master AS m
		JOIN pragma_table_info(m.name) AS p
		WHERE m.type IN ('table', 'view') AND m.name NOT LIKE 'sqlite_%'
		ORDER BY m.name, p.cid`,
	},
	"postgres": {
		name:          "postgres",
		driver:        "pgx",
		defaultSchema: "public",
		query: `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position`,
		usesSchema: true,
	},
	"duckdb": {
		name:          "duckdb",
		driver:        "duckdb",
		defaultSchema: "main",
		query: `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = ?
		ORDER BY table_name, ordinal_position`,
		usesSchema: true,
	},
}

var aliases = map[string]string{
	"sqlite3":    "sqlite",
	"postgresql": "postgres",
	"pgx":        "postgres",
}

func lookup(name string) (dialect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}
	return d, nil
}

// Drivers returns the supported driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupported reports whether driver (or one of its aliases) can be opened.
func IsSupported(driver string) bool {
	_, err := lookup(driver)
	return err == nil
}

// Open connects to a database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	d, err := lookup(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", d.name, err)
	}
	return db, nil
}

// Load opens the database, introspects schemaName and builds a catalog with
// the built-in keywords and functions. The connection is closed on return.
func Load(ctx context.Context, driver, dsn, schemaName string, logger *slog.Logger) (*catalog.Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	def, err := Introspect(ctx, db, driver, schemaName)
	if err != nil {
		return nil, err
	}
	logger.Debug("introspected schema",
		slog.String("driver", driver),
		slog.String("schema", schemaName),
		slog.Int("relations", len(def.Relations)))

	c, err := catalog.New(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog from schema: %w", err)
	}
	return c, nil
}
