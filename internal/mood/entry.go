package mood

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// NoteKey is the synthetic free-text key. It is always last in the key list
// and never part of the rating set.
const NoteKey = "note"

const (
	MinRating = 1
	MaxRating = 10
)

// Entry is one saved mood record.
type Entry struct {
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
	Values    Values `json:"values"`
	Exported  bool   `json:"exported"`
}

// Time returns the entry timestamp as a time.Time in UTC.
func (e *Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// Values holds the ratings and note of an entry. A nil rating means no value
// was recorded for that key. On the wire it is a flat object:
//
//	{"energy": 4, "guilt": null, "note": "slept badly"}
type Values struct {
	Ratings map[string]*int
	Note    *string
}

// Rating returns the rating for key and whether one was recorded.
func (v Values) Rating(key string) (int, bool) {
	r, ok := v.Ratings[key]
	if !ok || r == nil {
		return 0, false
	}
	return *r, true
}

// Keys returns the rating keys present in v, sorted.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v.Ratings))
	for k := range v.Ratings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (v Values) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(v.Ratings)+1)
	for k, r := range v.Ratings {
		if r == nil {
			m[k] = nil
			continue
		}
		m[k] = *r
	}
	if v.Note != nil {
		m[NoteKey] = *v.Note
	} else {
		m[NoteKey] = nil
	}
	return json.Marshal(m)
}

func (v *Values) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		*v = Values{}
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("values must be an object: %w", err)
	}
	*v = valuesFromRaw(raw, nil)
	return nil
}

// valuesFromRaw builds Values from a decoded object, ignoring keys in skip.
// Ratings that are not numbers or numeric strings become nil.
func valuesFromRaw(raw map[string]json.RawMessage, skip map[string]bool) Values {
	v := Values{Ratings: make(map[string]*int, len(raw))}
	for k, msg := range raw {
		if skip[k] {
			continue
		}
		if k == NoteKey {
			v.Note = decodeNote(msg)
			continue
		}
		v.Ratings[k] = decodeRating(msg)
	}
	return v
}

func decodeNote(msg json.RawMessage) *string {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return nil
	}
	return normalizeNote(s)
}

func decodeRating(msg json.RawMessage) *int {
	if isJSONNull(msg) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		n := clampRating(int(math.Max(math.Min(math.Trunc(f), math.MaxInt32), math.MinInt32)))
		return &n
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return ParseRating(s)
	}
	return nil
}

func isJSONNull(msg []byte) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}
