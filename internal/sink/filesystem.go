package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"moodlog/internal/mood"
)

// FileSystemSink writes export files into a single directory.
type FileSystemSink struct {
	dir string
}

// NewFileSystemSink creates a sink rooted at dir, creating it if needed.
func NewFileSystemSink(dir string) (*FileSystemSink, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &FileSystemSink{dir: dir}, nil
}

// Dir returns the export directory.
func (s *FileSystemSink) Dir() string {
	return s.dir
}

func (s *FileSystemSink) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put writes the file using a temp file and rename so a reader never sees a
// partial export.
func (s *FileSystemSink) Put(name string, r io.Reader, size int64) error {
	destPath, err := s.path(name)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemSink) Get(name string, w io.Writer) error {
	srcPath, err := s.path(name)
	if err != nil {
		return err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", mood.ErrExportNotFound, name)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return nil
}

// ValidateSetup verifies that the export directory exists and is writable.
func (s *FileSystemSink) ValidateSetup() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("export directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("export path is not a directory: %s", s.dir)
	}

	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("export directory not writable: %w", err)
	}
	f.Close()
	os.Remove(f.Name())
	return nil
}

// Compile-time check that FileSystemSink implements mood.Sink interface
var _ mood.Sink = (*FileSystemSink)(nil)
