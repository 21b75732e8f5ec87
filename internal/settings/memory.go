package settings

import (
	"maps"
	"slices"
	"sync"

	"moodlog/internal/mood"
)

// MemorySettings is an in-memory settings store. Safe for concurrent use.
type MemorySettings struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{data: make(map[string][]byte)}
}

func (s *MemorySettings) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (s *MemorySettings) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}

func (s *MemorySettings) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns every stored key, sorted.
func (s *MemorySettings) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.data))
}

var _ mood.Settings = (*MemorySettings)(nil)
