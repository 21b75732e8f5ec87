package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"moodlog/internal/database/migrations"
	"moodlog/internal/mood"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the mood.Database interface using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *Queries
	path    string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{
		db:      db,
		queries: NewQueries(db),
		path:    path,
	}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: NewQueries(db),
		path:    "",
	}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes transactions and keeps ":memory:"
	// pointing at one database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// inTx runs fn in a transaction and commits if it returns nil.
func (s *SQLiteDatabase) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Entry operations

func (s *SQLiteDatabase) AddEntry(ctx context.Context, e *mood.Entry) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(q *Queries) error {
		var err error
		id, err = insertOne(ctx, q, e)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteDatabase) InsertEntries(ctx context.Context, entries []*mood.Entry, progress func(done int)) (int, error) {
	n := 0
	err := s.inTx(ctx, func(q *Queries) error {
		for _, e := range entries {
			if _, err := insertOne(ctx, q, e); err != nil {
				return err
			}
			n++
			if progress != nil {
				progress(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func insertOne(ctx context.Context, q *Queries, e *mood.Entry) (int64, error) {
	values, err := json.Marshal(e.Values)
	if err != nil {
		return 0, fmt.Errorf("encoding entry values: %w", err)
	}
	id, err := q.InsertEntry(ctx, InsertEntryParams{
		Timestamp:  e.Timestamp,
		ValuesJSON: string(values),
		Exported:   e.Exported,
	})
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) AllEntries(ctx context.Context) ([]*mood.Entry, error) {
	rows, err := s.queries.GetEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return toEntries(rows)
}

func (s *SQLiteDatabase) UnexportedEntries(ctx context.Context) ([]*mood.Entry, error) {
	rows, err := s.queries.GetUnexportedEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unexported entries: %w", err)
	}
	return toEntries(rows)
}

func toEntries(rows []Entry) ([]*mood.Entry, error) {
	result := make([]*mood.Entry, len(rows))
	for i, r := range rows {
		e := &mood.Entry{ID: r.ID, Timestamp: r.Timestamp, Exported: r.Exported}
		if err := json.Unmarshal([]byte(r.ValuesJSON), &e.Values); err != nil {
			return nil, fmt.Errorf("decoding values of entry %d: %w", r.ID, err)
		}
		result[i] = e
	}
	return result, nil
}

func (s *SQLiteDatabase) SetExported(ctx context.Context, ids []int64, exported bool) ([]int64, error) {
	var found []int64
	err := s.inTx(ctx, func(q *Queries) error {
		for _, id := range ids {
			ok, err := q.UpdateEntryExported(ctx, id, exported)
			if err != nil {
				return fmt.Errorf("updating entry %d: %w", id, err)
			}
			if ok {
				found = append(found, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *SQLiteDatabase) ClearEntries(ctx context.Context) error {
	return s.inTx(ctx, func(q *Queries) error {
		if err := q.DeleteEntries(ctx); err != nil {
			return fmt.Errorf("deleting entries: %w", err)
		}
		return nil
	})
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation string, parameters string) (*mood.Operation, error) {
	var op Operation
	err := s.inTx(ctx, func(q *Queries) error {
		id, err := q.InsertOperation(ctx, InsertOperationParams{
			Operation:  operation,
			Parameters: parameters,
			StartedAt:  time.Now().UTC(),
			Status:     "running",
		})
		if err != nil {
			return err
		}
		op, err = q.GetOperation(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return toOperation(op), nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string) error {
	n, err := s.queries.UpdateOperationFinished(ctx, UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing operation: %w", sql.ErrNoRows)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*mood.Operation, error) {
	ops, err := s.queries.GetOperations(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}

	result := make([]*mood.Operation, len(ops))
	for i := range ops {
		result[i] = toOperation(ops[i])
	}
	return result, nil
}

func toOperation(op Operation) *mood.Operation {
	return &mood.Operation{
		ID:         op.ID,
		Operation:  op.Operation,
		Parameters: op.Parameters,
		StartedAt:  op.StartedAt,
		FinishedAt: op.FinishedAt,
		Status:     op.Status,
	}
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate brings the schema up to date.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements mood.Database interface
var _ mood.Database = (*SQLiteDatabase)(nil)
