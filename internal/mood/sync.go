package mood

import "context"

// SyncTracker marks entries as exported and remembers the last batch it
// marked so that one export can be undone.
//
// Calls are not synchronized with each other. A MarkExported racing an
// UndoLastExport over the same ids ends with whichever transaction commits
// last.
type SyncTracker struct {
	database Database
	settings Settings
	logger   Logger
}

// NewSyncTracker creates a SyncTracker over database, keeping the undo batch
// in settings.
func NewSyncTracker(database Database, settings Settings, logger Logger) *SyncTracker {
	return &SyncTracker{database: database, settings: settings, logger: logger}
}

// Unsynced returns every entry not yet marked exported.
func (t *SyncTracker) Unsynced(ctx context.Context) ([]*Entry, error) {
	entries, err := t.database.UnexportedEntries(ctx)
	if err != nil {
		return nil, storageErr("loading unsynced entries", err)
	}
	return entries, nil
}

// MarkExported sets exported=true on each existing id and records ids as the
// undo batch, replacing any earlier one. An empty ids is a no-op.
func (t *SyncTracker) MarkExported(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	marked, err := t.database.SetExported(ctx, ids, true)
	if err != nil {
		return storageErr("marking entries exported", err)
	}

	saveSetting(t.settings, t.logger, SettingLastExportIDs, ids)
	t.logger.Info("entries marked exported", "requested", len(ids), "marked", len(marked))
	return nil
}

// UndoLastExport clears the exported flag on the last recorded batch and
// forgets the batch. It returns the number of entries changed, or
// ErrNothingToUndo when no batch is recorded.
func (t *SyncTracker) UndoLastExport(ctx context.Context) (int, error) {
	ids, ok := t.LastExportBatch()
	if !ok {
		return 0, ErrNothingToUndo
	}

	restored, err := t.database.SetExported(ctx, ids, false)
	if err != nil {
		return 0, storageErr("undoing last export", err)
	}

	deleteSetting(t.settings, t.logger, SettingLastExportIDs)
	t.logger.Info("last export undone", "batch", len(ids), "restored", len(restored))
	return len(restored), nil
}

// LastExportBatch returns the ids recorded by the last MarkExported. It
// returns false when there is no usable batch.
func (t *SyncTracker) LastExportBatch() ([]int64, bool) {
	var ids []int64
	if !loadSetting(t.settings, t.logger, SettingLastExportIDs, &ids) || len(ids) == 0 {
		return nil, false
	}
	return ids, true
}
