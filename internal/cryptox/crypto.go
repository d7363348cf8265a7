// Package cryptox seals values stored on disk. The persisted session pair is
// encrypted with XChaCha20-Poly1305 under a per-device key kept next to the
// database.
package cryptox

import (
	"crypto/cipher"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/sanes/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = chacha20poly1305.KeySize

// Sealer encrypts and authenticates small values. A stored value is the
// random nonce followed by the ciphertext.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a KeySize-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, common.ErrInvalidKey
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. additional binds the result to a context (the store
// key name), so a value copied under another key fails to open.
func (s *Sealer) Seal(plaintext, additional []byte) []byte {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	out := make([]byte, 0, len(nonce)+len(plaintext)+s.aead.Overhead())
	out = append(out, nonce...)
	return s.aead.Seal(out, nonce, plaintext, additional)
}

// Open reverses Seal. Tampered, truncated or misplaced values yield
// common.ErrCorruptedData.
func (s *Sealer) Open(sealed, additional []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, common.ErrCorruptedData
	}
	plaintext, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], additional)
	if err != nil {
		return nil, common.ErrCorruptedData
	}
	return plaintext, nil
}

// LoadOrCreateKey reads the key at path, generating and writing a fresh one
// with 0600 permissions when the file does not exist yet.
func LoadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("key file %s: %w", path, common.ErrInvalidKey)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key = common.GenerateRandByteArray(KeySize)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}
