package sink

import (
	"context"
	"testing"

	"moodlog/internal/config"
)

func TestNewSinkFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ExportConfig
		wantErr bool
	}{
		{"memory", config.ExportConfig{Type: "memory"}, false},
		{"filesystem", config.ExportConfig{Type: "filesystem", Dir: t.TempDir()}, false},
		{"filesystem without dir", config.ExportConfig{Type: "filesystem"}, true},
		{"s3 without bucket", config.ExportConfig{Type: "s3"}, true},
		{"unknown", config.ExportConfig{Type: "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSinkFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSinkFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewSinkFromConfig() returned nil")
			}
			if tt.wantErr && got != nil {
				t.Error("NewSinkFromConfig() should return nil on error")
			}
		})
	}
}
