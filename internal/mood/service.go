package mood

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Service is the orchestration layer used by the CLI. It combines the
// registry, the entry store, the sync tracker, the codecs and the export
// sink into the user-facing operations.
type Service struct {
	database  Database
	registry  *Registry
	tracker   *SyncTracker
	sink      Sink
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a Service. encryptor may be nil, in which case exports
// are written in plaintext.
func NewService(database Database, settings Settings, sink Sink, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database:  database,
		registry:  NewRegistry(settings, logger),
		tracker:   NewSyncTracker(database, settings, logger),
		sink:      sink,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// Registry returns the schema registry.
func (s *Service) Registry() *Registry { return s.registry }

// Tracker returns the sync-state tracker.
func (s *Service) Tracker() *SyncTracker { return s.tracker }

// AddEntry records a new entry from raw form input keyed by emotion key.
// Untracked keys are stored as null whatever their input. Tracked ratings
// are parsed with ParseRating. The note is trimmed, and an empty note is
// stored as null. Keys outside the effective schema are ignored.
func (s *Service) AddEntry(ctx context.Context, input map[string]string) (int64, error) {
	e := &Entry{
		Timestamp: s.clock.Now().UnixMilli(),
		Values:    s.buildValues(input),
		Exported:  false,
	}

	id, err := s.database.AddEntry(ctx, e)
	if err != nil {
		return 0, storageErr("adding entry", err)
	}

	s.logger.Info("entry added", "id", id)
	return id, nil
}

func (s *Service) buildValues(input map[string]string) Values {
	tracked := keySet(s.registry.TrackedKeys())
	v := Values{Ratings: make(map[string]*int)}
	for _, k := range s.registry.AllKeys() {
		raw, ok := input[k]
		switch {
		case k == NoteKey:
			if ok {
				v.Note = normalizeNote(raw)
			}
		case !tracked[k] || !ok:
			v.Ratings[k] = nil
		default:
			v.Ratings[k] = ParseRating(raw)
		}
	}
	return v
}

// AllEntries returns every stored entry in store order. Use SortNewestFirst
// for display.
func (s *Service) AllEntries(ctx context.Context) ([]*Entry, error) {
	entries, err := s.database.AllEntries(ctx)
	if err != nil {
		return nil, storageErr("loading entries", err)
	}
	return entries, nil
}

// ClearEntries deletes every entry. This cannot be undone.
func (s *Service) ClearEntries(ctx context.Context) error {
	if err := s.database.ClearEntries(ctx); err != nil {
		return storageErr("clearing entries", err)
	}
	s.logger.Warn("all entries cleared")
	return nil
}

// ImportOptions controls ImportEntries.
type ImportOptions struct {
	// Encrypted marks the payload as encrypted with the configured encryptor.
	Encrypted bool
	// Passphrase unlocks the private key when Encrypted is set.
	Passphrase string
	// Progress, if set, is called as entries are inserted.
	Progress func(done, total int)
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportEntries reads a JSON array from r and inserts every decodable item
// as a new entry. A payload that is not an array fails with
// ErrInvalidImportFormat before anything is inserted.
func (s *Service) ImportEntries(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	if opts.Encrypted {
		plain, err := s.decrypt(r, opts.Passphrase)
		if err != nil {
			return nil, err
		}
		r = plain
	}

	batch, err := DecodeImport(r, s.clock.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("decoding import: %w", err)
	}

	var progress func(int)
	if opts.Progress != nil {
		total := len(batch.Entries)
		progress = func(done int) { opts.Progress(done, total) }
	}

	n, err := s.database.InsertEntries(ctx, batch.Entries, progress)
	if err != nil {
		return nil, storageErr("importing entries", err)
	}

	s.logger.Info("entries imported", "imported", n, "skipped", batch.Skipped)
	return &ImportResult{Imported: n, Skipped: batch.Skipped}, nil
}

// ImportFromSink imports a file previously written to the export sink. A
// name ending in .age is decrypted with opts.Passphrase.
func (s *Service) ImportFromSink(ctx context.Context, name string, opts ImportOptions) (*ImportResult, error) {
	var buf bytes.Buffer
	if err := s.sink.Get(name, &buf); err != nil {
		return nil, fmt.Errorf("reading export %s: %w", name, err)
	}
	opts.Encrypted = strings.HasSuffix(name, encryptedSuffix)
	return s.ImportEntries(ctx, &buf, opts)
}

func (s *Service) decrypt(r io.Reader, passphrase string) (io.Reader, error) {
	if s.encryptor == nil {
		return nil, fmt.Errorf("encrypted import requires encryption to be configured")
	}
	dc, err := s.encryptor.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	var buf bytes.Buffer
	if err := dc.Decrypt(r, &buf); err != nil {
		return nil, fmt.Errorf("decrypting import: %w", err)
	}
	return &buf, nil
}

const encryptedSuffix = ".age"

// ExportResult describes a file written to the sink.
type ExportResult struct {
	Name  string
	Count int
	Size  int64
}

// ExportJSON writes every entry to the sink as a JSON array.
func (s *Service) ExportJSON(ctx context.Context) (*ExportResult, error) {
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, entries); err != nil {
		return nil, err
	}
	return s.writeExport(s.exportName("emotion-entries", "json"), buf.Bytes(), len(entries))
}

// ExportCSV writes every entry to the sink as CSV using the current columns.
// It returns ErrNothingToExport when the store is empty.
func (s *Service) ExportCSV(ctx context.Context) (*ExportResult, error) {
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, s.CSVColumns(), entries); err != nil {
		return nil, err
	}
	return s.writeExport(s.exportName("emotion-entries", "csv"), buf.Bytes(), len(entries))
}

// ExportUnsynced writes the unsynced entries to the sink as CSV and then
// marks exactly those entries exported. Marking only happens after the file
// is stored. With no unsynced entries it returns ErrNothingToExport and
// changes nothing.
func (s *Service) ExportUnsynced(ctx context.Context) (*ExportResult, error) {
	entries, err := s.tracker.Unsynced(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := EncodeCSV(&buf, s.CSVColumns(), entries); err != nil {
		return nil, err
	}

	res, err := s.writeExport(s.exportName("emotion-unsynced", "csv"), buf.Bytes(), len(entries))
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.ID != 0 {
			ids = append(ids, e.ID)
		}
	}
	if err := s.tracker.MarkExported(ctx, ids); err != nil {
		return nil, fmt.Errorf("export %s written but not marked: %w", res.Name, err)
	}
	return res, nil
}

// UndoLastExport reverts the last ExportUnsynced or MarkExported batch.
func (s *Service) UndoLastExport(ctx context.Context) (int, error) {
	return s.tracker.UndoLastExport(ctx)
}

// CSVColumns returns the columns a CSV export would use right now.
func (s *Service) CSVColumns() []string {
	return CSVColumns(s.registry.Effective(), s.registry.TrackedKeys())
}

// ExportSchema writes the categories config: the saved override, or the
// defaults when none is saved.
func (s *Service) ExportSchema(w io.Writer) error {
	data, err := json.MarshalIndent(s.registry.ConfigSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}

// ImportSchema reads a categories config and proposes it as the override.
// It returns the keys new to the effective schema.
func (s *Service) ImportSchema(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	var schema Schema
	if err := schema.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaEdit, err)
	}
	return s.registry.ProposeOverride(schema)
}

// BackupDatabase writes a snapshot of the entry store to the sink.
func (s *Service) BackupDatabase(ctx context.Context) (*ExportResult, error) {
	tmp, err := os.CreateTemp("", "moodlog-db-backup-*.db")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for db backup: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	if err := s.database.BackupTo(tmpPath); err != nil {
		return nil, storageErr("backing up database", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading db backup: %w", err)
	}
	entries, err := s.AllEntries(ctx)
	if err != nil {
		return nil, err
	}
	return s.writeExport(s.exportName("moodlog", "db"), data, len(entries))
}

// exportName builds a file name unique per invocation, for example
// emotion-entries-20240115T103000.000Z-1b4e28ba.csv.
func (s *Service) exportName(prefix, ext string) string {
	ts := s.clock.Now().UTC().Format("20060102T150405.000Z")
	id := s.idgen.New()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s-%s.%s", prefix, ts, id, ext)
}

// writeExport stores data in the sink, encrypting it first when an
// encryptor is configured.
func (s *Service) writeExport(name string, data []byte, count int) (*ExportResult, error) {
	if s.encryptor != nil {
		var enc bytes.Buffer
		if err := s.encryptor.Encrypt(bytes.NewReader(data), &enc); err != nil {
			return nil, fmt.Errorf("encrypting export: %w", err)
		}
		data = enc.Bytes()
		name += encryptedSuffix
	}

	size := int64(len(data))
	if err := s.sink.Put(name, bytes.NewReader(data), size); err != nil {
		return nil, fmt.Errorf("writing export %s: %w", name, err)
	}

	s.logger.Info("export written", "name", name, "entries", count, "bytes", size)
	return &ExportResult{Name: name, Count: count, Size: size}, nil
}

// SortNewestFirst orders entries by timestamp, newest first. Entries with
// equal timestamps keep id order reversed.
func SortNewestFirst(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		switch {
		case a.Timestamp != b.Timestamp:
			return compareInt64(b.Timestamp, a.Timestamp)
		default:
			return compareInt64(b.ID, a.ID)
		}
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
