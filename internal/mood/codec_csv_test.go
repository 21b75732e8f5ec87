package mood

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestCSVColumns(t *testing.T) {
	t.Run("all default keys", func(t *testing.T) {
		got := CSVColumns(DefaultSchema(), DefaultSchema().Keys())
		want := append([]string{"timestamp", "id"}, DefaultSchema().Keys()...)
		want = append(want, "note")
		if !slices.Equal(got, want) {
			t.Errorf("CSVColumns() = %v, want %v", got, want)
		}
	})

	t.Run("tracked subset follows category order", func(t *testing.T) {
		got := CSVColumns(DefaultSchema(), []string{"overwhelmed", "energy", "energy", "note"})
		want := []string{"timestamp", "id", "energy", "overwhelmed", "note"}
		if !slices.Equal(got, want) {
			t.Errorf("CSVColumns() = %v, want %v", got, want)
		}
	})
}

func TestEncodeCSV(t *testing.T) {
	cols := []string{"timestamp", "id", "energy", "guilt", "note"}

	t.Run("header only for no entries", func(t *testing.T) {
		var buf bytes.Buffer
		if err := EncodeCSV(&buf, cols, nil); err != nil {
			t.Fatalf("EncodeCSV() error = %v", err)
		}
		if got, want := buf.String(), "timestamp,id,energy,guilt,note"; got != want {
			t.Errorf("EncodeCSV() = %q, want %q", got, want)
		}
	})

	t.Run("rows joined by CRLF without trailing separator", func(t *testing.T) {
		note := "ok"
		entries := []*Entry{
			{ID: 1, Timestamp: 1705314600000, Values: Values{Ratings: map[string]*int{"energy": intPtr(4)}}},
			{ID: 2, Timestamp: 1705314660123, Values: Values{Ratings: map[string]*int{"guilt": intPtr(2), "energy": nil}, Note: &note}},
		}
		var buf bytes.Buffer
		if err := EncodeCSV(&buf, cols, entries); err != nil {
			t.Fatalf("EncodeCSV() error = %v", err)
		}
		want := "timestamp,id,energy,guilt,note\r\n" +
			"2024-01-15T10:30:00.000Z,1,4,,\r\n" +
			"2024-01-15T10:31:00.123Z,2,,2,ok"
		if got := buf.String(); got != want {
			t.Errorf("EncodeCSV() = %q, want %q", got, want)
		}
	})

	t.Run("entry without id leaves id cell empty", func(t *testing.T) {
		var buf bytes.Buffer
		e := &Entry{Timestamp: 0, Values: Values{}}
		if err := EncodeCSV(&buf, []string{"id", "note"}, []*Entry{e}); err != nil {
			t.Fatalf("EncodeCSV() error = %v", err)
		}
		if got, want := buf.String(), "id,note\r\n,"; got != want {
			t.Errorf("EncodeCSV() = %q, want %q", got, want)
		}
	})

	t.Run("note with comma quote and newline is escaped", func(t *testing.T) {
		note := "a, \"b\"\nc"
		e := &Entry{ID: 3, Values: Values{Note: &note}}
		var buf bytes.Buffer
		if err := EncodeCSV(&buf, []string{"note"}, []*Entry{e}); err != nil {
			t.Fatalf("EncodeCSV() error = %v", err)
		}
		rows := strings.SplitN(buf.String(), "\r\n", 2)
		if got, want := rows[1], "\"a, \"\"b\"\"\nc\""; got != want {
			t.Errorf("note cell = %q, want %q", got, want)
		}
	})
}

func TestCSVEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{" leading space", " leading space"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\rbreak", "\"line\rbreak\""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := csvEscape(tt.in); got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got, want := FormatTimestamp(0), "1970-01-01T00:00:00.000Z"; got != want {
		t.Errorf("FormatTimestamp(0) = %q, want %q", got, want)
	}
	if got, want := FormatTimestamp(1705314600007), "2024-01-15T10:30:00.007Z"; got != want {
		t.Errorf("FormatTimestamp() = %q, want %q", got, want)
	}
}
