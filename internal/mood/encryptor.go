package mood

import "io"

// Encryptor handles encryption of export files and unlocking for import.
// Encryption uses the public key only; decryption needs the passphrase that
// protects the private key.
type Encryptor interface {
	// Setup performs one-time key generation. It generates a key pair, stores
	// the public key in plaintext, and encrypts the private key with passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext for the rest of the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
