package sink

import (
	"context"
	"fmt"

	"moodlog/internal/config"
	"moodlog/internal/mood"
)

// NewSinkFromConfig creates a Sink implementation based on the export config type.
func NewSinkFromConfig(ctx context.Context, cfg config.ExportConfig) (mood.Sink, error) {
	switch cfg.Type {
	case "memory":
		return NewMemorySink(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem export requires dir to be set")
		}
		s, err := NewFileSystemSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "s3":
		s, err := NewS3Sink(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown export type: %s", cfg.Type)
	}
}
