package settings

import (
	"fmt"

	"moodlog/internal/config"
	"moodlog/internal/mood"
)

// NewSettingsFromConfig creates a Settings implementation based on the config type.
func NewSettingsFromConfig(cfg config.SettingsConfig) (mood.Settings, error) {
	switch cfg.Type {
	case "diskv":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("dir required for diskv settings")
		}
		return NewDiskvSettings(cfg.Dir), nil
	case "memory":
		return NewMemorySettings(), nil
	default:
		return nil, fmt.Errorf("unknown settings type: %s", cfg.Type)
	}
}
