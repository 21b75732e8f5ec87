package encryption

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"moodlog/internal/mood"
)

// testMagic opens every export written by TestEncryptor.
var testMagic = []byte("moodlog-test-enc\n")

// testMask scrambles the payload so no rating or note is readable in the
// exported file.
const testMask byte = 0x5a

// ErrWrongPassphrase is returned by TestEncryptor.Unlock when Setup recorded
// a different passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// TestEncryptor stands in for the age encryptor in tests and under the
// "test" config type. Output is deterministic and needs no key files. Until
// Setup is called any passphrase unlocks it.
type TestEncryptor struct {
	passphrase string
	keyed      bool
}

var _ mood.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records passphrase. Unlock accepts only that passphrase afterwards.
func (e *TestEncryptor) Setup(passphrase string) error {
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	e.passphrase = passphrase
	e.keyed = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := mask(r, w); err != nil {
		return fmt.Errorf("encrypting export: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (mood.DecryptionContext, error) {
	if e.keyed && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return &TestDecryptionContext{}, nil
}

// IsConfigured is always true: the test encryptor has no key files to miss.
func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// TestDecryptionContext reverses TestEncryptor.Encrypt.
type TestDecryptionContext struct{}

var _ mood.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, testMagic) {
		return fmt.Errorf("not a test-encrypted export")
	}
	if err := mask(r, w); err != nil {
		return fmt.Errorf("decrypting export: %w", err)
	}
	return nil
}

func mask(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := bw.WriteByte(b ^ testMask); err != nil {
			return err
		}
	}
	return bw.Flush()
}
