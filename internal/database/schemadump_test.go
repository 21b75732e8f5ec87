package database

import (
	"context"
	"strings"
	"testing"
)

func TestMigratedSchema_MatchesEmbeddedSchema(t *testing.T) {
	t.Parallel()

	got, err := MigratedSchema(context.Background())
	if err != nil {
		t.Fatalf("MigratedSchema() error = %v", err)
	}
	if got != Schema {
		t.Errorf("schema.sql is stale; run go generate ./internal/database\n got:\n%s\nwant:\n%s", got, Schema)
	}
}

func TestDumpSchema(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	dump, err := DumpSchema(ctx, db)
	if err != nil {
		t.Fatalf("DumpSchema() error = %v", err)
	}

	entries := strings.Index(dump, "CREATE TABLE entries")
	operations := strings.Index(dump, "CREATE TABLE operations")
	index := strings.Index(dump, "CREATE INDEX idx_entries_timestamp")
	if entries < 0 || operations < 0 || index < 0 {
		t.Fatalf("dump is missing a statement:\n%s", dump)
	}
	if !(entries < operations && operations < index) {
		t.Errorf("want tables by name then indexes, got:\n%s", dump)
	}
	if strings.Contains(dump, "sqlite_sequence") {
		t.Error("dump includes sqlite_sequence")
	}
}
