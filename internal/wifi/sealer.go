package wifi

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id parameters for deriving the sealing key.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 1
)

// keySalt is fixed: the key must be re-derivable on every boot from the
// storage key alone.
var keySalt = []byte("camportal/wifi/v1")

// Sealer encrypts and decrypts WiFi passwords.
type Sealer struct {
	key []byte
}

// NewSealer derives a sealing key from storageKey.
func NewSealer(storageKey string) (*Sealer, error) {
	if storageKey == "" {
		return nil, errors.New("wifi: empty storage key")
	}
	key := argon2.IDKey([]byte(storageKey), keySalt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext, binding it to aad.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open decrypts data produced by Seal with the same aad.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrSealedDataCorrupt
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrSealedDataCorrupt
	}
	return plaintext, nil
}
