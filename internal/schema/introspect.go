package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/yql/pkg/catalog"
)

// Introspect lists the tables and columns of schemaName and returns them as a
// catalog definition with the built-in keywords and functions. An empty
// schemaName selects the driver's default schema. SQLite ignores the schema.
func Introspect(ctx context.Context, db *sql.DB, driver, schemaName string) (catalog.Definition, error) {
	d, err := lookup(driver)
	if err != nil {
		return catalog.Definition{}, err
	}
	if db == nil {
		return catalog.Definition{}, fmt.Errorf("database connection not established")
	}
	if schemaName == "" {
		schemaName = d.defaultSchema
	}

	var args []any
	if d.usesSchema {
		args = append(args, schemaName)
	}

	rows, err := db.QueryContext(ctx, d.query, args...)
	if err != nil {
		return catalog.Definition{}, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	def := catalog.Definition{
		Keywords:  append([]string(nil), catalog.DefaultKeywords...),
		Functions: append([]string(nil), catalog.DefaultFunctions...),
	}
	index := make(map[string]int)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return catalog.Definition{}, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		i, ok := index[table]
		if !ok {
			i = len(def.Relations)
			index[table] = i
			def.Relations = append(def.Relations, catalog.RelationDef{Name: table})
		}
		def.Relations[i].Fields = append(def.Relations[i].Fields, column)
	}
	if err := rows.Err(); err != nil {
		return catalog.Definition{}, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(def.Relations) == 0 {
		return catalog.Definition{}, fmt.Errorf("%w in %s schema %q", ErrNoRelations, d.name, schemaName)
	}
	return def, nil
}
