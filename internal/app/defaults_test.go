package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	share := filepath.Join(homeDir, ".local", "share", "moodlog")

	tests := []struct {
		name string
		env  map[string]string
		want Paths
	}{
		{
			name: "home defaults",
			want: Paths{
				ConfigPath: filepath.Join(homeDir, ".config", "moodlog.toml"),
				Home:       share,
				LogDir:     filepath.Join(share, "log"),
				ExportDir:  filepath.Join(share, "exports"),
			},
		},
		{
			name: "MOODLOG_HOME moves data, logs and exports",
			env:  map[string]string{EnvHome: "/data/moodlog"},
			want: Paths{
				ConfigPath: filepath.Join(homeDir, ".config", "moodlog.toml"),
				Home:       "/data/moodlog",
				LogDir:     "/data/moodlog/log",
				ExportDir:  "/data/moodlog/exports",
			},
		},
		{
			name: "export dir outside home",
			env: map[string]string{
				EnvConfigPath: "/etc/moodlog.toml",
				EnvHome:       "/data/moodlog",
				EnvExportDir:  "/sync/mood",
			},
			want: Paths{
				ConfigPath: "/etc/moodlog.toml",
				Home:       "/data/moodlog",
				LogDir:     "/data/moodlog/log",
				ExportDir:  "/sync/mood",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvConfigPath, EnvHome, EnvExportDir} {
				t.Setenv(k, tt.env[k])
			}

			got, err := DefaultPaths()
			if err != nil {
				t.Fatalf("DefaultPaths() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DefaultPaths() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaths_NewConfig(t *testing.T) {
	p := Paths{
		ConfigPath: "/etc/moodlog.toml",
		Home:       "/data/moodlog",
		LogDir:     "/data/moodlog/log",
		ExportDir:  "/sync/mood",
	}

	cfg := p.NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	checks := map[string][2]string{
		"base dir":     {cfg.BaseDir, "/data/moodlog"},
		"log dir":      {cfg.LogDir, "/data/moodlog/log"},
		"database dir": {cfg.Database.DataDir, "/data/moodlog/db"},
		"settings dir": {cfg.Settings.Dir, "/data/moodlog/settings"},
		"export dir":   {cfg.Export.Dir, "/sync/mood"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
}
