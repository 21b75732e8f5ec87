package settings

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"moodlog/internal/config"
	"moodlog/internal/mood"
)

func TestSettingsBackends(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) mood.Settings
	}{
		{"memory", func(t *testing.T) mood.Settings { return NewMemorySettings() }},
		{"diskv", func(t *testing.T) mood.Settings { return NewDiskvSettings(t.TempDir()) }},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Run("missing key", func(t *testing.T) {
				s := b.new(t)
				val, ok, err := s.Get(mood.SettingTrackedKeys)
				if err != nil || ok || val != nil {
					t.Errorf("Get() = %q, %v, %v; want nil, false, nil", val, ok, err)
				}
			})

			t.Run("set then get", func(t *testing.T) {
				s := b.new(t)
				if err := s.Set(mood.SettingLastExportIDs, []byte("[1,2]")); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				val, ok, err := s.Get(mood.SettingLastExportIDs)
				if err != nil || !ok {
					t.Fatalf("Get() = %v, %v", ok, err)
				}
				if string(val) != "[1,2]" {
					t.Errorf("Get() = %q, want %q", val, "[1,2]")
				}
			})

			t.Run("set replaces", func(t *testing.T) {
				s := b.new(t)
				s.Set("k", []byte("a"))
				s.Set("k", []byte("b"))
				val, _, _ := s.Get("k")
				if string(val) != "b" {
					t.Errorf("Get() = %q, want b", val)
				}
			})

			t.Run("delete", func(t *testing.T) {
				s := b.new(t)
				s.Set("k", []byte("a"))
				if err := s.Delete("k"); err != nil {
					t.Fatalf("Delete() error = %v", err)
				}
				if _, ok, _ := s.Get("k"); ok {
					t.Error("key still present after Delete()")
				}
				if err := s.Delete("k"); err != nil {
					t.Errorf("Delete() of missing key error = %v", err)
				}
			})
		})
	}
}

func TestDiskvSettings(t *testing.T) {
	t.Run("persists across instances", func(t *testing.T) {
		dir := t.TempDir()
		if err := NewDiskvSettings(dir).Set(mood.SettingLabels, []byte(`{"energy":"Pep"}`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		val, ok, err := NewDiskvSettings(dir).Get(mood.SettingLabels)
		if err != nil || !ok || string(val) != `{"energy":"Pep"}` {
			t.Errorf("Get() = %q, %v, %v", val, ok, err)
		}

		if _, err := os.Stat(filepath.Join(dir, mood.SettingLabels+".json")); err != nil {
			t.Errorf("setting file not found: %v", err)
		}
	})

	t.Run("rejects path-like keys", func(t *testing.T) {
		s := NewDiskvSettings(t.TempDir())
		for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
			if err := s.Set(key, []byte("x")); err == nil {
				t.Errorf("Set(%q) expected error", key)
			}
		}
	})

	t.Run("lists keys", func(t *testing.T) {
		s := NewDiskvSettings(t.TempDir())
		s.Set("b", []byte("1"))
		s.Set("a", []byte("2"))

		keys := s.Keys()
		slices.Sort(keys)
		if !slices.Equal(keys, []string{"a", "b"}) {
			t.Errorf("Keys() = %v, want [a b]", keys)
		}
	})
}

func TestNewSettingsFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SettingsConfig
		wantErr bool
	}{
		{"memory", config.SettingsConfig{Type: "memory"}, false},
		{"diskv", config.SettingsConfig{Type: "diskv", Dir: t.TempDir()}, false},
		{"diskv without dir", config.SettingsConfig{Type: "diskv"}, true},
		{"unknown", config.SettingsConfig{Type: "redis"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSettingsFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSettingsFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewSettingsFromConfig() returned nil")
			}
		})
	}
}
