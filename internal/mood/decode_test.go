package mood

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const testNow = int64(1705314600000)

func TestDecodeImport(t *testing.T) {
	t.Run("rejects non-array payloads", func(t *testing.T) {
		for _, payload := range []string{`{}`, `"x"`, `null`, `42`, `not json`} {
			_, err := DecodeImport(strings.NewReader(payload), testNow)
			if !errors.Is(err, ErrInvalidImportFormat) {
				t.Errorf("DecodeImport(%s) error = %v, want ErrInvalidImportFormat", payload, err)
			}
		}
	})

	t.Run("empty array", func(t *testing.T) {
		batch, err := DecodeImport(strings.NewReader(`[]`), testNow)
		if err != nil {
			t.Fatalf("DecodeImport() error = %v", err)
		}
		if len(batch.Entries) != 0 || batch.Skipped != 0 {
			t.Errorf("batch = %+v, want empty", batch)
		}
	})

	t.Run("export shape", func(t *testing.T) {
		payload := `[{"id": 99, "timestamp": 1700000000000, "values": {"energy": 4, "guilt": null, "note": " tired "}, "exported": true}]`
		batch, err := DecodeImport(strings.NewReader(payload), testNow)
		if err != nil {
			t.Fatalf("DecodeImport() error = %v", err)
		}
		if len(batch.Entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(batch.Entries))
		}
		e := batch.Entries[0]
		if e.ID != 0 {
			t.Errorf("ID = %d, want 0 (ids are reassigned on insert)", e.ID)
		}
		if e.Timestamp != 1700000000000 {
			t.Errorf("Timestamp = %d, want 1700000000000", e.Timestamp)
		}
		if !e.Exported {
			t.Error("Exported = false, want true")
		}
		if v, ok := e.Values.Rating("energy"); !ok || v != 4 {
			t.Errorf("energy = %d, %v; want 4, true", v, ok)
		}
		if _, ok := e.Values.Rating("guilt"); ok {
			t.Error("guilt should be recorded as null")
		}
		if e.Values.Note == nil || *e.Values.Note != "tired" {
			t.Errorf("note = %v, want tired", fmtStrPtr(e.Values.Note))
		}
	})

	t.Run("legacy bare value map", func(t *testing.T) {
		payload := `[{"energy": "7", "crying": 12, "note": "", "timestamp": "2024-01-15T10:30:00Z", "id": 5}]`
		batch, err := DecodeImport(strings.NewReader(payload), 1)
		if err != nil {
			t.Fatalf("DecodeImport() error = %v", err)
		}
		e := batch.Entries[0]
		if e.Timestamp != 1705314600000 {
			t.Errorf("Timestamp = %d, want 1705314600000", e.Timestamp)
		}
		if e.Exported {
			t.Error("legacy items default to not exported")
		}
		if v, _ := e.Values.Rating("energy"); v != 7 {
			t.Errorf("energy = %d, want 7", v)
		}
		if v, _ := e.Values.Rating("crying"); v != 10 {
			t.Errorf("crying = %d, want clamped 10", v)
		}
		if e.Values.Note != nil {
			t.Errorf("empty note should be nil, got %q", *e.Values.Note)
		}
		for _, k := range []string{"id", "timestamp"} {
			if _, present := e.Values.Ratings[k]; present {
				t.Errorf("meta key %q decoded as a rating", k)
			}
		}
	})

	t.Run("missing, zero or out-of-range timestamp uses now", func(t *testing.T) {
		payload := `[{"values": {}}, {"timestamp": 0, "values": {}}, {"timestamp": "garbage", "values": {}}, {"timestamp": 1e300, "values": {}}, {"timestamp": -1e300, "values": {}}]`
		batch, err := DecodeImport(strings.NewReader(payload), testNow)
		if err != nil {
			t.Fatalf("DecodeImport() error = %v", err)
		}
		if len(batch.Entries) != 5 {
			t.Fatalf("decoded %d entries, want 5", len(batch.Entries))
		}
		for i, e := range batch.Entries {
			if e.Timestamp != testNow {
				t.Errorf("entry %d Timestamp = %d, want %d", i, e.Timestamp, testNow)
			}
		}
	})

	t.Run("non-object items are skipped", func(t *testing.T) {
		payload := `[1, "two", null, [], {"values": {"energy": 3}}]`
		batch, err := DecodeImport(strings.NewReader(payload), testNow)
		if err != nil {
			t.Fatalf("DecodeImport() error = %v", err)
		}
		if len(batch.Entries) != 1 {
			t.Errorf("got %d entries, want 1", len(batch.Entries))
		}
		if batch.Skipped != 4 {
			t.Errorf("Skipped = %d, want 4", batch.Skipped)
		}
	})

	t.Run("non-bool exported is false", func(t *testing.T) {
		batch, _ := DecodeImport(strings.NewReader(`[{"values": {}, "exported": "yes"}]`), testNow)
		if batch.Entries[0].Exported {
			t.Error("Exported = true, want false")
		}
	})
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	note := "hello, world"
	entries := []*Entry{
		{ID: 1, Timestamp: 1705314600000, Values: Values{Ratings: map[string]*int{"energy": intPtr(3), "guilt": nil}, Note: &note}, Exported: true},
		{ID: 2, Timestamp: 1705314700000, Values: Values{Ratings: map[string]*int{"impulsive": intPtr(9)}}},
	}

	var buf bytes.Buffer
	if err := EncodeJSON(&buf, entries); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	batch, err := DecodeImport(&buf, testNow)
	if err != nil {
		t.Fatalf("DecodeImport() error = %v", err)
	}
	if len(batch.Entries) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(batch.Entries), len(entries))
	}
	for i, got := range batch.Entries {
		want := entries[i]
		if got.Timestamp != want.Timestamp || got.Exported != want.Exported {
			t.Errorf("entry %d = %+v, want %+v", i, got, want)
		}
		for k := range want.Values.Ratings {
			gv, gok := got.Values.Rating(k)
			wv, wok := want.Values.Rating(k)
			if gv != wv || gok != wok {
				t.Errorf("entry %d %s = %d/%v, want %d/%v", i, k, gv, gok, wv, wok)
			}
		}
		if fmtStrPtr(got.Values.Note) != fmtStrPtr(want.Values.Note) {
			t.Errorf("entry %d note = %v, want %v", i, fmtStrPtr(got.Values.Note), fmtStrPtr(want.Values.Note))
		}
	}
}

func TestEncodeJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, nil); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if got := buf.String(); got != "[]" {
		t.Errorf("EncodeJSON(nil) = %q, want []", got)
	}
}
