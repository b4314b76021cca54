// Package crypto seals secret setting values with AES-256-GCM.
//
// Ciphertexts are base64(nonce || sealed) and are bound to a caller-supplied
// label (the setting key), so a value copied onto another key fails to open.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrNoKey is returned by a Box built without a key.
var ErrNoKey = errors.New("encryption key not configured")

// Box encrypts and decrypts with one AES-256 key.
type Box struct {
	aead cipher.AEAD
}

// DeriveKey decodes a 64 character hex string into a 32 byte key.
func DeriveKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be exactly 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// NewBox builds a Box from a hex key. An empty key yields a Box whose
// Seal and Open return ErrNoKey.
func NewBox(hexKey string) (*Box, error) {
	if hexKey == "" {
		return &Box{}, nil
	}

	key, err := DeriveKey(hexKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: gcm}, nil
}

// Enabled reports whether a key was configured.
func (b *Box) Enabled() bool { return b.aead != nil }

// Seal encrypts plaintext bound to label.
func (b *Box) Seal(label, plaintext string) (string, error) {
	if b.aead == nil {
		return "", ErrNoKey
	}

	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce generation: %w", err)
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), []byte(label))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal with the same label.
func (b *Box) Open(label, encoded string) (string, error) {
	if b.aead == nil {
		return "", ErrNoKey
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	n := b.aead.NonceSize()
	if len(data) < n {
		return "", errors.New("ciphertext too short")
	}

	plain, err := b.aead.Open(nil, data[:n], data[n:], []byte(label))
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}
	return string(plain), nil
}
