package mood

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStorageUnavailable means the entry store could not be opened or a
	// transaction aborted. Nothing from the failed operation is committed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidImportFormat means the import payload is not a JSON array.
	ErrInvalidImportFormat = errors.New("invalid import format")

	// ErrInvalidSchemaEdit means a proposed schema was rejected.
	ErrInvalidSchemaEdit = errors.New("invalid schema edit")

	// ErrNothingToUndo means no export batch is recorded.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToExport means an export found no entries and did nothing.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrExportNotFound means a sink holds no file with the requested name.
	ErrExportNotFound = errors.New("export not found")

	// ErrEmptyTrackedSet means a tracked-set update would leave nothing tracked.
	ErrEmptyTrackedSet = errors.New("select at least one emotion to track")
)

// StorageError wraps a failure from the entry store. It matches
// ErrStorageUnavailable with errors.Is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageUnavailable, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// DuplicateKeysError names the keys that appear in more than one category of
// a proposed schema. It matches ErrInvalidSchemaEdit with errors.Is.
type DuplicateKeysError struct {
	Keys []string
}

func (e *DuplicateKeysError) Error() string {
	return fmt.Sprintf("duplicate keys found: %s", strings.Join(e.Keys, ", "))
}

func (e *DuplicateKeysError) Is(target error) bool { return target == ErrInvalidSchemaEdit }
