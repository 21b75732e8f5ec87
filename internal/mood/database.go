package mood

import (
	"context"
	"database/sql"
	"time"
)

// Operation is one recorded CLI command that mutated the store.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
}

// Database is the entry store. Every method runs in a single transaction:
// it either commits completely or leaves the store unchanged.
type Database interface {
	// Entry operations

	// AddEntry inserts e and returns its newly assigned id. e.ID is ignored.
	AddEntry(ctx context.Context, e *Entry) (int64, error)

	// InsertEntries inserts entries in one transaction, assigning new ids.
	// progress, if non-nil, is called after each insert with the running count.
	InsertEntries(ctx context.Context, entries []*Entry, progress func(done int)) (int, error)

	// AllEntries returns every entry in insertion order.
	AllEntries(ctx context.Context) ([]*Entry, error)

	// UnexportedEntries returns entries whose exported flag is false.
	UnexportedEntries(ctx context.Context) ([]*Entry, error)

	// SetExported sets the exported flag on each existing id. Unknown ids
	// are skipped. It returns the ids that exist.
	SetExported(ctx context.Context, ids []int64, exported bool) ([]int64, error)

	// ClearEntries deletes every entry. Ids are not reused afterwards.
	ClearEntries(ctx context.Context) error

	// Operation history

	// CreateOperation records the start of a mutating command.
	CreateOperation(ctx context.Context, operation string, parameters string) (*Operation, error)

	// FinishOperation marks an operation finished with the given status.
	FinishOperation(ctx context.Context, id int64, status string) error

	// ListOperations returns the most recent operations, newest first.
	ListOperations(ctx context.Context, limit int) ([]*Operation, error)

	// Migrate brings the schema up to date.
	Migrate() error

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the store to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
