package sink

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"moodlog/internal/mood"
)

// MemorySink keeps export files in memory. It is useful for testing and for
// dry runs. Safe for concurrent use.
type MemorySink struct {
	files map[string][]byte
	mu    sync.RWMutex
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (m *MemorySink) Put(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return nil
}

func (m *MemorySink) Get(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[name]
	if !ok {
		return fmt.Errorf("%w: %s", mood.ErrExportNotFound, name)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Names returns the stored file names, sorted.
func (m *MemorySink) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.files))
}

// ValidateSetup always succeeds for the in-memory sink.
func (m *MemorySink) ValidateSetup() error {
	return nil
}

// Compile-time check that MemorySink implements mood.Sink interface
var _ mood.Sink = (*MemorySink)(nil)
