package encryption

import (
	"fmt"

	"moodlog/internal/config"
	"moodlog/internal/mood"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// It returns nil when encryption is disabled.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (mood.Encryptor, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return newEncryptor(cfg)
}

// NewKeySetup returns the Encryptor used to generate keys, whether or not
// encryption is enabled yet.
func NewKeySetup(cfg config.EncryptionConfig) (mood.Encryptor, error) {
	return newEncryptor(cfg)
}

func newEncryptor(cfg config.EncryptionConfig) (mood.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
