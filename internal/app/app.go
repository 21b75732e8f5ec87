package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"moodlog/internal/config"
	"moodlog/internal/database"
	"moodlog/internal/encryption"
	"moodlog/internal/mood"
	"moodlog/internal/settings"
	"moodlog/internal/sink"
)

// MoodApp is the application layer between the CLI and mood.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI input, and manages the DB lifecycle on Close.
type MoodApp struct {
	cfg       *config.Config
	db        mood.Database
	settings  mood.Settings
	sink      mood.Sink
	encryptor mood.Encryptor
	service   *mood.Service
	logger    mood.Logger
	op        *Operation
	logFile   *os.File
}

// NewMoodApp creates a fully wired MoodApp from the given config.
// operation identifies the CLI command being run (e.g. "AddEntry", "Import").
// The caller must call Close when done.
func NewMoodApp(ctx context.Context, cfg *config.Config, operation string) (*MoodApp, error) {
	return newMoodApp(ctx, cfg, operation, os.Stderr)
}

func newMoodApp(ctx context.Context, cfg *config.Config, operation string, stderr io.Writer) (*MoodApp, error) {
	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	st, err := settings.NewSettingsFromConfig(cfg.Settings)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating settings store: %w", err)
	}

	sk, err := sink.NewSinkFromConfig(ctx, cfg.Export)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating export sink: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		db.Close()
		return nil, fmt.Errorf("encryption is enabled but no keys exist: run `moodlog config keys`")
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID, stderr)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	svc := mood.NewService(db, st, sk, enc, logger, mood.RealClock{}, mood.UUIDGenerator{})

	return &MoodApp{
		cfg:       cfg,
		db:        db,
		settings:  st,
		sink:      sk,
		encryptor: enc,
		service:   svc,
		logger:    logger,
		op:        NewOperation(operation, ""),
		logFile:   logFile,
	}, nil
}

// persistOperation saves the operation to the database, giving it an auto-increment ID.
// This should only be called for mutating commands.
func (a *MoodApp) persistOperation(ctx context.Context, parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// Registry returns the schema registry for read-only commands.
func (a *MoodApp) Registry() *mood.Registry {
	return a.service.Registry()
}

// EncryptionEnabled reports whether exports are encrypted.
func (a *MoodApp) EncryptionEnabled() bool {
	return a.encryptor != nil
}

// AddEntry records an entry from key=value pairs. note, if non-nil, is the
// free-text note. Unknown keys are rejected before anything is stored.
func (a *MoodApp) AddEntry(ctx context.Context, pairs []string, note *string) (int64, error) {
	input, err := a.parsePairs(pairs)
	if err != nil {
		return 0, err
	}
	if note != nil {
		input[mood.NoteKey] = *note
	}

	if err := a.persistOperation(ctx, strings.Join(pairs, " ")); err != nil {
		return 0, err
	}
	id, err := a.service.AddEntry(ctx, input)
	return id, a.op.Fail(err)
}

func (a *MoodApp) parsePairs(pairs []string) (map[string]string, error) {
	known := a.Registry().AllKeys()
	input := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid rating %q: expected key=value", p)
		}
		if k == mood.NoteKey || !slices.Contains(known, k) {
			return nil, fmt.Errorf("unknown emotion key %q", k)
		}
		input[k] = v
	}
	return input, nil
}

// Entries returns stored entries newest first. With unsyncedOnly set only
// entries not yet exported are returned.
func (a *MoodApp) Entries(ctx context.Context, unsyncedOnly bool) ([]*mood.Entry, error) {
	var (
		entries []*mood.Entry
		err     error
	)
	if unsyncedOnly {
		entries, err = a.service.Tracker().Unsynced(ctx)
	} else {
		entries, err = a.service.AllEntries(ctx)
	}
	if err != nil {
		return nil, err
	}
	mood.SortNewestFirst(entries)
	return entries, nil
}

// Export writes entries to the export sink. format is json, csv or
// unsynced. Only unsynced changes stored state.
func (a *MoodApp) Export(ctx context.Context, format string) (*mood.ExportResult, error) {
	switch format {
	case "json":
		return a.service.ExportJSON(ctx)
	case "csv":
		return a.service.ExportCSV(ctx)
	case "unsynced":
		if err := a.persistOperation(ctx, format); err != nil {
			return nil, err
		}
		res, err := a.service.ExportUnsynced(ctx)
		return res, a.op.Fail(err)
	default:
		return nil, fmt.Errorf("unknown export format %q: want json, csv or unsynced", format)
	}
}

// Undo reverts the last unsynced export.
func (a *MoodApp) Undo(ctx context.Context) (int, error) {
	if err := a.persistOperation(ctx, ""); err != nil {
		return 0, err
	}
	n, err := a.service.UndoLastExport(ctx)
	return n, a.op.Fail(err)
}

// ImportFile imports entries from a local JSON file. A path ending in .age
// is treated as encrypted.
func (a *MoodApp) ImportFile(ctx context.Context, path string, opts mood.ImportOptions) (*mood.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	if err := a.persistOperation(ctx, path); err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".age") {
		opts.Encrypted = true
	}
	res, err := a.service.ImportEntries(ctx, f, opts)
	return res, a.op.Fail(err)
}

// ImportExport imports a file previously written to the export sink.
func (a *MoodApp) ImportExport(ctx context.Context, name string, opts mood.ImportOptions) (*mood.ImportResult, error) {
	if err := a.persistOperation(ctx, name); err != nil {
		return nil, err
	}
	res, err := a.service.ImportFromSink(ctx, name, opts)
	return res, a.op.Fail(err)
}

// Clear deletes every entry.
func (a *MoodApp) Clear(ctx context.Context) error {
	if err := a.persistOperation(ctx, ""); err != nil {
		return err
	}
	return a.op.Fail(a.service.ClearEntries(ctx))
}

// SetTracked replaces the tracked key set.
func (a *MoodApp) SetTracked(ctx context.Context, keys []string) ([]string, error) {
	if err := a.persistOperation(ctx, strings.Join(keys, " ")); err != nil {
		return nil, err
	}
	kept, err := a.Registry().SetTrackedKeys(keys)
	return kept, a.op.Fail(err)
}

// SetLabel changes the display label for key. An empty label restores the default.
func (a *MoodApp) SetLabel(ctx context.Context, key, label string) error {
	if !slices.Contains(a.Registry().AllKeys(), key) {
		return fmt.Errorf("unknown emotion key %q", key)
	}
	if err := a.persistOperation(ctx, key+"="+label); err != nil {
		return err
	}
	a.Registry().SetLabel(key, label)
	return nil
}

// ResetSchema drops the category override.
func (a *MoodApp) ResetSchema(ctx context.Context) error {
	if err := a.persistOperation(ctx, ""); err != nil {
		return err
	}
	a.Registry().ResetOverride()
	return nil
}

// ExportSchemaFile writes the categories config to path. The file is
// written to a temp file first and renamed into place.
func (a *MoodApp) ExportSchemaFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".moodlog-categories-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := a.service.ExportSchema(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming categories file: %w", err)
	}
	return nil
}

// ImportSchemaFile proposes the categories config at path as the override.
// It returns the keys new to the schema.
func (a *MoodApp) ImportSchemaFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories file: %w", err)
	}
	defer f.Close()

	if err := a.persistOperation(ctx, path); err != nil {
		return nil, err
	}
	added, err := a.service.ImportSchema(f)
	return added, a.op.Fail(err)
}

// History returns the most recent operations.
func (a *MoodApp) History(ctx context.Context, limit int) ([]*mood.Operation, error) {
	return a.service.GetHistory(ctx, limit)
}

// Backup writes a database snapshot to the export sink.
func (a *MoodApp) Backup(ctx context.Context) (*mood.ExportResult, error) {
	return a.service.BackupDatabase(ctx)
}

// SettingKeys returns the keys held by the settings store, if it can list them.
func (a *MoodApp) SettingKeys() []string {
	if l, ok := a.settings.(interface{ Keys() []string }); ok {
		return l.Keys()
	}
	return nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations it finishes the operation record and, when
// snapshot_on_change is set, writes a database snapshot to the export sink.
func (a *MoodApp) Close() error {
	ctx := context.Background()
	var firstErr error

	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}

		if a.cfg.Database.SnapshotOnChange && a.op.Status == StatusSuccess {
			if res, err := a.service.BackupDatabase(ctx); err != nil {
				a.logger.Warn("database snapshot failed", "error", err)
			} else {
				a.logger.Info("database snapshot written", "name", res.Name)
			}
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// SetupEncryptionKeys generates the age key pair named in cfg, protecting
// the private key with passphrase. Existing keys are never replaced.
func SetupEncryptionKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewKeySetup(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption keys: %w", err)
	}
	return nil
}

// ValidateExportSink builds the configured export sink and checks that it
// is reachable and writable.
func ValidateExportSink(ctx context.Context, cfg *config.Config) error {
	sk, err := sink.NewSinkFromConfig(ctx, cfg.Export)
	if err != nil {
		return fmt.Errorf("creating export sink: %w", err)
	}
	if err := sk.ValidateSetup(); err != nil {
		return fmt.Errorf("validating export sink: %w", err)
	}
	return nil
}
