package testutil

import (
	"moodlog/internal/encryption"
	"moodlog/internal/mood"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() mood.Encryptor {
	return encryption.NewTestEncryptor()
}
