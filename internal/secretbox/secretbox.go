// Package secretbox seals credential bundles at rest with AES-256-GCM.
// Authenticated encryption means a tampered or foreign ciphertext fails to
// open instead of decrypting to plausible-looking garbage.
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrOpen is returned for any ciphertext that cannot be authenticated and
// decrypted: wrong key, truncation, or tampering.
var ErrOpen = errors.New("secretbox: cannot open ciphertext")

type Box struct {
	aead cipher.AEAD
}

// New derives a 256-bit key from the configured secret. The secret is an
// operator-chosen string, not required to be exactly 32 bytes.
func New(secret string) (*Box, error) {
	if secret == "" {
		return nil, errors.New("secretbox: empty key")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
func (b *Box) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Any failure is ErrOpen; the caller
// treats it as "reconnect your account", never as a retryable condition.
func (b *Box) Open(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrOpen
	}
	if len(raw) < b.aead.NonceSize() {
		return nil, ErrOpen
	}
	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrOpen
	}
	return plaintext, nil
}
