package database

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL used by SQLiteDatabase. Each method is a single
// statement; transactions are managed by the caller through WithTx.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Entry is a row of the entries table.
type Entry struct {
	ID         int64
	Timestamp  int64
	ValuesJSON string
	Exported   bool
}

// Operation is a row of the operations table.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
}

const insertEntry = `
INSERT INTO entries (timestamp, values_json, exported)
VALUES (?, ?, ?)
`

type InsertEntryParams struct {
	Timestamp  int64
	ValuesJSON string
	Exported   bool
}

func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertEntry, arg.Timestamp, arg.ValuesJSON, arg.Exported)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getEntries = `
SELECT id, timestamp, values_json, exported
FROM entries
ORDER BY id
`

func (q *Queries) GetEntries(ctx context.Context) ([]Entry, error) {
	return q.queryEntries(ctx, getEntries)
}

const getUnexportedEntries = `
SELECT id, timestamp, values_json, exported
FROM entries
WHERE exported = 0
ORDER BY id
`

func (q *Queries) GetUnexportedEntries(ctx context.Context) ([]Entry, error) {
	return q.queryEntries(ctx, getUnexportedEntries)
}

func (q *Queries) queryEntries(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Entry
	for rows.Next() {
		var i Entry
		if err := rows.Scan(&i.ID, &i.Timestamp, &i.ValuesJSON, &i.Exported); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateEntryExported = `
UPDATE entries SET exported = ? WHERE id = ?
`

// UpdateEntryExported sets the exported flag and reports whether the row
// exists.
func (q *Queries) UpdateEntryExported(ctx context.Context, id int64, exported bool) (bool, error) {
	res, err := q.db.ExecContext(ctx, updateEntryExported, exported, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const deleteEntries = `
DELETE FROM entries
`

func (q *Queries) DeleteEntries(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteEntries)
	return err
}

const insertOperation = `
INSERT INTO operations (operation, parameters, started_at, status)
VALUES (?, ?, ?, ?)
`

type InsertOperationParams struct {
	Operation  string
	Parameters string
	StartedAt  time.Time
	Status     string
}

func (q *Queries) InsertOperation(ctx context.Context, arg InsertOperationParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertOperation, arg.Operation, arg.Parameters, arg.StartedAt, arg.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getOperation = `
SELECT id, operation, parameters, started_at, finished_at, status
FROM operations
WHERE id = ?
`

func (q *Queries) GetOperation(ctx context.Context, id int64) (Operation, error) {
	var i Operation
	err := q.db.QueryRowContext(ctx, getOperation, id).Scan(
		&i.ID, &i.Operation, &i.Parameters, &i.StartedAt, &i.FinishedAt, &i.Status,
	)
	return i, err
}

const updateOperationFinished = `
UPDATE operations SET finished_at = ?, status = ? WHERE id = ?
`

type UpdateOperationFinishedParams struct {
	FinishedAt sql.NullTime
	Status     string
	ID         int64
}

func (q *Queries) UpdateOperationFinished(ctx context.Context, arg UpdateOperationFinishedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateOperationFinished, arg.FinishedAt, arg.Status, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getOperations = `
SELECT id, operation, parameters, started_at, finished_at, status
FROM operations
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) GetOperations(ctx context.Context, limit int64) ([]Operation, error) {
	rows, err := q.db.QueryContext(ctx, getOperations, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Operation
	for rows.Next() {
		var i Operation
		if err := rows.Scan(&i.ID, &i.Operation, &i.Parameters, &i.StartedAt, &i.FinishedAt, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
