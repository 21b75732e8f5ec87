package mood

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeJSON writes entries as a pretty-printed JSON array. The output
// decodes back into the same entries through DecodeImport.
func EncodeJSON(w io.Writer, entries []*Entry) error {
	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing entries: %w", err)
	}
	return nil
}
