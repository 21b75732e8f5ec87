package mood

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// ImportBatch is the result of decoding an import payload.
type ImportBatch struct {
	Entries []*Entry
	Skipped int // items that matched no known shape
}

// legacyMetaKeys are item fields that never count as ratings when an item is
// read as a bare value map.
var legacyMetaKeys = map[string]bool{
	"id":        true,
	"timestamp": true,
	"exported":  true,
	"values":    true,
}

// DecodeImport reads a JSON array of entries. Two item shapes are accepted:
//
//   - the export shape {timestamp?, values: {...}, exported?}
//   - a bare value map {key: rating, ..., note?, timestamp?}
//
// Each item is matched against the export shape first, then the bare map.
// Items matching neither, such as numbers or strings, are counted in
// Skipped. A payload that is not an array fails with ErrInvalidImportFormat.
// Items without a usable timestamp get nowMillis.
func DecodeImport(r io.Reader, nowMillis int64) (*ImportBatch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidImportFormat)
	}

	batch := &ImportBatch{Entries: make([]*Entry, 0, len(items))}
	for _, raw := range items {
		e, ok := decodeImportItem(raw, nowMillis)
		if !ok {
			batch.Skipped++
			continue
		}
		batch.Entries = append(batch.Entries, e)
	}
	return batch, nil
}

func decodeImportItem(raw json.RawMessage, nowMillis int64) (*Entry, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}

	e := &Entry{
		Timestamp: decodeTimestamp(obj["timestamp"], nowMillis),
		Exported:  decodeBool(obj["exported"]),
	}

	if vraw, ok := obj["values"]; ok {
		var vals map[string]json.RawMessage
		if err := json.Unmarshal(vraw, &vals); err == nil && vals != nil {
			e.Values = valuesFromRaw(vals, nil)
			return e, true
		}
	}

	e.Values = valuesFromRaw(obj, legacyMetaKeys)
	return e, true
}

// maxSafeMillis is the largest integer a float64 holds exactly.
const maxSafeMillis = 1 << 53

func decodeTimestamp(raw json.RawMessage, nowMillis int64) int64 {
	if raw == nil {
		return nowMillis
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f == 0 || math.IsNaN(f) || math.Abs(f) > maxSafeMillis {
			return nowMillis
		}
		return int64(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli()
		}
	}
	return nowMillis
}

func decodeBool(raw json.RawMessage) bool {
	var b bool
	if raw == nil || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}
