package testutil

import (
	"io"

	"moodlog/internal/mood"
	"moodlog/internal/settings"
	"moodlog/internal/sink"
)

// NewTestSettings returns an empty in-memory settings store.
func NewTestSettings() *settings.MemorySettings {
	return settings.NewMemorySettings()
}

// NewTestSink returns an empty in-memory export sink.
func NewTestSink() *sink.MemorySink {
	return sink.NewMemorySink()
}

// FailingSettings is a settings store whose every call returns Err.
type FailingSettings struct {
	Err error
}

var _ mood.Settings = (*FailingSettings)(nil)

func (s *FailingSettings) Get(string) ([]byte, bool, error) { return nil, false, s.Err }
func (s *FailingSettings) Set(string, []byte) error { return s.Err }
func (s *FailingSettings) Delete(string) error { return s.Err }

// FailingSink is an export sink that refuses every write. Reads report a
// missing export.
type FailingSink struct {
	Err error
}

var _ mood.Sink = (*FailingSink)(nil)

func (s *FailingSink) Put(string, io.Reader, int64) error { return s.Err }
func (s *FailingSink) Get(string, io.Writer) error { return mood.ErrExportNotFound }
func (s *FailingSink) ValidateSetup() error { return s.Err }
