package testutil

import (
	"testing"

	"moodlog/internal/mood"
	"moodlog/internal/settings"
	"moodlog/internal/sink"
)

// Harness bundles a Service with the in-memory collaborators it was built
// from so tests can inspect them directly.
type Harness struct {
	Service  *mood.Service
	DB       mood.Database
	Settings *settings.MemorySettings
	Sink     *sink.MemorySink
	Clock    *StubClock
	IDs      *StubIDGenerator
}

// NewHarness builds a plaintext Service over an in-memory database,
// settings store and sink, with FixedClock and sequential ids.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return newHarness(t, nil)
}

// NewEncryptedHarness is NewHarness with the test encryptor enabled.
func NewEncryptedHarness(t *testing.T) *Harness {
	t.Helper()
	return newHarness(t, NewTestEncryptor())
}

func newHarness(t *testing.T, enc mood.Encryptor) *Harness {
	t.Helper()
	h := &Harness{
		DB:       NewTestDatabase(t),
		Settings: NewTestSettings(),
		Sink:     NewTestSink(),
		Clock:    FixedClock(),
		IDs:      NewStubIDGenerator(),
	}
	h.Service = mood.NewService(h.DB, h.Settings, h.Sink, enc, mood.NewNopLogger(), h.Clock, h.IDs)
	return h
}
