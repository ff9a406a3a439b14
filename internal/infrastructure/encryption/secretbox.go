package encryption

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"catalog-sync-shopify-layer/internal/ports"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Service encrypts secrets with NaCl secretbox. The 32-byte key is derived
// from the configured ENCRYPTION_KEY.
type Service struct {
	key [32]byte
}

// NewService creates an encryption service from a passphrase
func NewService(secret string) (ports.EncryptionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("encryption key must be at least 16 characters")
	}
	return &Service{key: sha256.Sum256([]byte(secret))}, nil
}

// Encrypt seals plaintext and returns nonce||box as base64
func (s *Service) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func (s *Service) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < nonceSize+secretbox.Overhead {
		return "", errors.New("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("failed to decrypt: authentication failed")
	}
	return string(plain), nil
}
