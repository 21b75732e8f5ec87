package mood

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Category is a named, ordered group of emotion keys.
type Category struct {
	ID    string
	Title string
	Keys  []string
}

// Schema is an ordered list of categories. Category order is significant: it
// drives form layout and CSV column order.
//
// On the wire a Schema is a JSON object of category id to {title, keys}.
// Decoding keeps the object's key order.
type Schema struct {
	Categories []Category
}

// DefaultSchema returns the built-in categories. The result is a fresh copy
// on every call.
func DefaultSchema() Schema {
	return Schema{Categories: []Category{
		{
			ID:    "high",
			Title: "High Moods",
			Keys:  []string{"excitement", "talkative", "inflated_self_confidence", "sleep_high"},
		},
		{
			ID:    "low",
			Title: "Low Moods",
			Keys:  []string{"energy", "unmotivated", "sleep_low", "guilt", "indecisive", "crying"},
		},
		{
			ID:    "adhd",
			Title: "ADHD",
			Keys:  []string{"impulsive", "absent_minded", "time_management", "interrupting", "overwhelmed"},
		},
	}}
}

// Category returns the category with the given id.
func (s Schema) Category(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Keys flattens the categories in order. NoteKey is not included.
func (s Schema) Keys() []string {
	var keys []string
	for _, c := range s.Categories {
		keys = append(keys, c.Keys...)
	}
	return keys
}

// Clone returns a deep copy of s.
func (s Schema) Clone() Schema {
	out := Schema{Categories: make([]Category, len(s.Categories))}
	for i, c := range s.Categories {
		out.Categories[i] = Category{ID: c.ID, Title: c.Title, Keys: slices.Clone(c.Keys)}
	}
	return out
}

// Merge applies an override to defaults:
//   - a default category whose override supplies a non-empty key list takes
//     the override's keys, and its title unless that is empty
//   - override-only categories are appended in override order
//   - default categories absent from the override are unchanged
func Merge(defaults Schema, override *Schema) Schema {
	if override == nil {
		return defaults.Clone()
	}

	out := Schema{}
	seen := make(map[string]bool, len(defaults.Categories))
	for _, def := range defaults.Categories {
		seen[def.ID] = true
		c := Category{ID: def.ID, Title: def.Title, Keys: slices.Clone(def.Keys)}
		if ov, ok := override.Category(def.ID); ok && len(ov.Keys) > 0 {
			c.Keys = slices.Clone(ov.Keys)
			if ov.Title != "" {
				c.Title = ov.Title
			}
		}
		out.Categories = append(out.Categories, c)
	}

	for _, ov := range override.Categories {
		if seen[ov.ID] {
			continue
		}
		seen[ov.ID] = true
		title := ov.Title
		if title == "" {
			title = ov.ID
		}
		out.Categories = append(out.Categories, Category{ID: ov.ID, Title: title, Keys: slices.Clone(ov.Keys)})
	}
	return out
}

// ValidateNoDuplicateKeys returns every key that appears more than once in s,
// each reported once, in the order the duplicates were found.
func ValidateNoDuplicateKeys(s Schema) []string {
	seen := make(map[string]bool)
	reported := make(map[string]bool)
	var dups []string
	for _, k := range s.Keys() {
		if seen[k] {
			if !reported[k] {
				reported[k] = true
				dups = append(dups, k)
			}
			continue
		}
		seen[k] = true
	}
	return dups
}

// NewKeys returns the keys in proposed that are not in previous. It is a
// structural check: a kept key with a new label is not reported, and a
// renamed concept cannot be told apart from an added one.
func NewKeys(previous, proposed []string) []string {
	prev := make(map[string]bool, len(previous))
	for _, k := range previous {
		prev[k] = true
	}
	var added []string
	for _, k := range proposed {
		if !prev[k] {
			added = append(added, k)
			prev[k] = true
		}
	}
	return added
}

type categoryJSON struct {
	Title string    `json:"title"`
	Keys  *[]string `json:"keys"`
}

func (s Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		id, err := json.Marshal(c.ID)
		if err != nil {
			return nil, err
		}
		keys := c.Keys
		if keys == nil {
			keys = []string{}
		}
		body, err := json.Marshal(categoryJSON{Title: c.Title, Keys: &keys})
		if err != nil {
			return nil, err
		}
		buf.Write(id)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schema must be an object of category id to {title, keys}")
	}

	var cats []Category
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading category id: %w", err)
		}
		id, _ := tok.(string)

		var body categoryJSON
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("category %q: %w", id, err)
		}
		if body.Keys == nil {
			return fmt.Errorf("category %q: missing keys list", id)
		}
		c := Category{ID: id, Title: body.Title, Keys: slices.Clone(*body.Keys)}

		if i := slices.IndexFunc(cats, func(x Category) bool { return x.ID == id }); i >= 0 {
			cats[i] = c
		} else {
			cats = append(cats, c)
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}

	s.Categories = cats
	return nil
}
