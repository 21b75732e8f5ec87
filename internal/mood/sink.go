package mood

import "io"

// Sink is a destination for export files. All operations stream through
// io.Reader/io.Writer.
type Sink interface {
	// Put stores the named file. size is the number of bytes that will be
	// read from r. An existing file with the same name is replaced.
	Put(name string, r io.Reader, size int64) error

	// Get writes the named file to w. A missing file is ErrExportNotFound.
	Get(name string, w io.Writer) error

	// ValidateSetup verifies that the sink is reachable and writable.
	ValidateSetup() error
}
