package mood

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	csvColumnTimestamp = "timestamp"
	csvColumnID        = "id"
	csvRowSeparator    = "\r\n"
	csvTimeLayout      = "2006-01-02T15:04:05.000Z07:00"
)

// CSVColumns returns the CSV header for the given schema and tracked set:
// timestamp and id, then the tracked keys in category order, then note.
// Category order wins over the order of tracked.
func CSVColumns(schema Schema, tracked []string) []string {
	want := keySet(tracked)
	seen := make(map[string]bool)
	cols := []string{csvColumnTimestamp, csvColumnID}
	for _, k := range schema.Keys() {
		if !want[k] || seen[k] || k == NoteKey {
			continue
		}
		seen[k] = true
		cols = append(cols, k)
	}
	return append(cols, NoteKey)
}

// EncodeCSV writes a header row of columns followed by one row per entry, in
// the order given. Rows are separated by CRLF. Missing values are empty
// cells, and cells are quoted as RFC 4180 requires.
//
// encoding/csv is not used because it also quotes cells with leading spaces
// and rewrites embedded LF as CRLF when UseCRLF is set.
func EncodeCSV(w io.Writer, columns []string, entries []*Entry) error {
	var b strings.Builder
	writeCSVRow(&b, columns)
	for _, e := range entries {
		b.WriteString(csvRowSeparator)
		writeCSVRow(&b, csvRecord(columns, e))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func csvRecord(columns []string, e *Entry) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case csvColumnTimestamp:
			row[i] = FormatTimestamp(e.Timestamp)
		case csvColumnID:
			if e.ID != 0 {
				row[i] = strconv.FormatInt(e.ID, 10)
			}
		case NoteKey:
			if e.Values.Note != nil {
				row[i] = *e.Values.Note
			}
		default:
			if v, ok := e.Values.Rating(col); ok {
				row[i] = strconv.Itoa(v)
			}
		}
	}
	return row
}

func writeCSVRow(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvEscape(c))
	}
}

// csvEscape quotes a cell when it contains a comma, double quote, CR or LF,
// doubling any embedded quotes.
func csvEscape(cell string) string {
	if !strings.ContainsAny(cell, ",\"\r\n") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// FormatTimestamp renders epoch milliseconds as an ISO-8601 UTC instant with
// millisecond precision, e.g. 2024-01-15T10:30:00.000Z.
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(csvTimeLayout)
}
