package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"moodlog/internal/mood"
)

const fileSuffix = ".json"

// DiskvSettings stores each setting as <dir>/<key>.json.
type DiskvSettings struct {
	d *diskv.Diskv
}

// NewDiskvSettings creates a settings store rooted at dir. The directory is
// created on first write.
func NewDiskvSettings(dir string) *DiskvSettings {
	return &DiskvSettings{d: diskv.New(diskv.Options{
		BasePath:          dir,
		TempDir:           filepath.Join(dir, ".tmp"),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
		FilePerm:          0600,
		PathPerm:          0700,
	})}
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key + fileSuffix}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	return strings.TrimSuffix(pk.FileName, fileSuffix)
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return fmt.Errorf("invalid settings key %q", key)
	}
	return nil
}

func (s *DiskvSettings) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	return val, true, nil
}

func (s *DiskvSettings) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.d.Write(key, value); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

func (s *DiskvSettings) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting setting %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key, sorted.
func (s *DiskvSettings) Keys() []string {
	var keys []string
	for k := range s.d.Keys(nil) {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

var _ mood.Settings = (*DiskvSettings)(nil)
