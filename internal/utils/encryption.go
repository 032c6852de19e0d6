package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Credential encryption for stored branch database passwords. The key is
// derived from ENC_KEY so operators can use a passphrase of any length.

var ErrNoEncryptionKey = errors.New("ENC_KEY not configured")

func deriveKey(encKey string) []byte {
	sum := sha256.Sum256([]byte(encKey))
	return sum[:]
}

// EncryptCredential encrypts a plaintext credential with AES-GCM and returns
// a hex string of nonce||ciphertext. An empty plaintext round-trips to empty.
func EncryptCredential(plaintext, encKey string) (string, error) {
	if encKey == "" {
		return "", ErrNoEncryptionKey
	}
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(deriveKey(encKey))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// DecryptCredential reverses EncryptCredential
func DecryptCredential(encrypted, encKey string) (string, error) {
	if encKey == "" {
		return "", ErrNoEncryptionKey
	}
	if encrypted == "" {
		return "", nil
	}

	raw, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted credential: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(encKey))
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", errors.New("encrypted credential too short")
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}

	return string(plaintext), nil
}
