package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMoodHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "entry added",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tentry added\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "ignoring malformed setting",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tignoring malformed setting\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "export written",
			attrs:   []slog.Attr{slog.String("name", "emotion-unsynced.csv"), slog.Int("entries", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\texport written\tname=emotion-unsynced.csv\tentries=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &moodHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestMoodHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &moodHandler{w: &buf, opID: "op-1"}

	// Add pre-set attrs
	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "sink")}).(*moodHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "put", 0)
	r.AddAttrs(slog.String("key", "abc"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=sink") {
		t.Errorf("expected pre-set attr component=sink, got: %q", got)
	}
	if !strings.Contains(got, "key=abc") {
		t.Errorf("expected record attr key=abc, got: %q", got)
	}
}

func TestMoodHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &moodHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*moodHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestMoodHandler_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		minLevel slog.Level
		level    slog.Level
		want     bool
	}{
		{name: "debug passes debug", minLevel: slog.LevelDebug, level: slog.LevelDebug, want: true},
		{name: "debug passes error", minLevel: slog.LevelDebug, level: slog.LevelError, want: true},
		{name: "warn drops info", minLevel: slog.LevelWarn, level: slog.LevelInfo, want: false},
		{name: "warn passes warn", minLevel: slog.LevelWarn, level: slog.LevelWarn, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &moodHandler{minLevel: tt.minLevel}
			if got := h.Enabled(context.Background(), tt.level); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	logger, f, err := newLogger(dir, "test-op", &stderr)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Info("entry added", "id", 1)
	logger.Warn("persisting setting failed", "key", "tracked-emotions")

	data, err := os.ReadFile(filepath.Join(dir, "moodlog.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	logged := string(data)
	if !strings.Contains(logged, "\tINFO\ttest-op\tentry added\tid=1") {
		t.Errorf("log file missing info line: %q", logged)
	}
	if !strings.Contains(logged, "\tWARN\ttest-op\tpersisting setting failed") {
		t.Errorf("log file missing warn line: %q", logged)
	}

	if strings.Contains(stderr.String(), "entry added") {
		t.Errorf("stderr got info line: %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "persisting setting failed") {
		t.Errorf("stderr missing warn line: %q", stderr.String())
	}
}

func TestTeeHandler_WithAttrs(t *testing.T) {
	var a, b bytes.Buffer
	h := teeHandler{
		&moodHandler{w: &a, opID: "op", minLevel: slog.LevelDebug},
		&moodHandler{w: &b, opID: "op", minLevel: slog.LevelDebug},
	}
	logger := slog.New(h).With("component", "sink")
	logger.Info("put")

	for i, buf := range []*bytes.Buffer{&a, &b} {
		if !strings.Contains(buf.String(), "put\tcomponent=sink") {
			t.Errorf("handler %d output = %q", i, buf.String())
		}
	}
}
