package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"moodlog/internal/database/migrations"
)

// DumpSchema returns the CREATE statements of db's tables and indexes,
// tables first, each ending in ";" and followed by a blank line. SQLite
// internals and the migrator's bookkeeping table are left out.
func DumpSchema(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 1 ELSE 2 END, name
	`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning statement: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	return b.String(), nil
}

// MigratedSchema migrates a scratch in-memory database to the latest version
// and returns the contents schema.sql should have.
func MigratedSchema(ctx context.Context) (string, error) {
	db, err := OpenConnection(":memory:")
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return "", fmt.Errorf("migrating scratch database: %w", err)
	}
	version, err := migrations.LatestVersion()
	if err != nil {
		return "", err
	}

	body, err := DumpSchema(ctx, db)
	if err != nil {
		return "", err
	}
	return schemaHeader(version) + body, nil
}

func schemaHeader(version uint) string {
	return fmt.Sprintf(`-- Entry store schema at migration %06d.
-- Generated from internal/database/migrations/files. Do not edit:
-- run 'go generate ./internal/database' instead.

`, version)
}
