package app

import (
	"fmt"
	"os"
	"path/filepath"

	"moodlog/internal/config"
)

// Environment variables that move moodlog's files.
const (
	EnvConfigPath = "MOODLOG_CONFIG_PATH"
	EnvHome       = "MOODLOG_HOME"
	EnvExportDir  = "MOODLOG_EXPORT_DIR"
)

// Paths is where moodlog keeps its files when the config does not say
// otherwise. Everything except the config file and the export directory
// lives under Home.
type Paths struct {
	ConfigPath string
	Home       string
	LogDir     string
	ExportDir  string
}

// DefaultPaths resolves Paths from the environment, falling back to
// ~/.config/moodlog.toml and ~/.local/share/moodlog. Exports go to
// <home>/exports unless MOODLOG_EXPORT_DIR points at, for example, a synced
// folder.
func DefaultPaths() (Paths, error) {
	var p Paths

	p.ConfigPath = os.Getenv(EnvConfigPath)
	p.Home = os.Getenv(EnvHome)
	if p.ConfigPath == "" || p.Home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if p.ConfigPath == "" {
			p.ConfigPath = filepath.Join(homeDir, ".config", "moodlog.toml")
		}
		if p.Home == "" {
			p.Home = filepath.Join(homeDir, ".local", "share", "moodlog")
		}
	}

	p.LogDir = filepath.Join(p.Home, "log")
	p.ExportDir = os.Getenv(EnvExportDir)
	if p.ExportDir == "" {
		p.ExportDir = filepath.Join(p.Home, "exports")
	}
	return p, nil
}

// NewConfig returns the config written by `moodlog config init`: the
// database, settings and keys under Home, exports in ExportDir.
func (p Paths) NewConfig() *config.Config {
	cfg := config.NewConfig(p.Home)
	cfg.LogDir = p.LogDir
	cfg.Export.Dir = p.ExportDir
	return cfg
}
