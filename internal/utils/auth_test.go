package utils

import (
	"testing"

	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestJWT(t *testing.T) {
	cfg := &config.Config{
		JWTSecret: "test-secret-key-12345",
	}

	user := &models.UserAuth{
		ID:    "uuid-1234",
		Email: "test@example.com",
		Role:  "admin",
	}

	// Test Generation
	accessToken, refreshToken, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("Failed to generate tokens: %v", err)
	}
	if accessToken == "" || refreshToken == "" {
		t.Error("Tokens should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateToken(accessToken, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims["id"] != user.ID {
		t.Errorf("Expected id %q in claims, got %v", user.ID, claims["id"])
	}
	if claims["role"] != "admin" {
		t.Errorf("Expected role admin in claims, got %v", claims["role"])
	}

	// Test Validation (Failure - wrong secret)
	if _, err := ValidateToken(accessToken, "wrong-secret"); err == nil {
		t.Error("Token signed with another secret should not validate")
	}

	// Test Validation (Failure - garbage)
	if _, err := ValidateToken("not.a.token", cfg.JWTSecret); err == nil {
		t.Error("Garbage token should not validate")
	}
}

func TestCredentialEncryption(t *testing.T) {
	key := "branch-credential-passphrase"
	secret := "pos-db-password-42"

	encrypted, err := EncryptCredential(secret, key)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	if encrypted == secret || encrypted == "" {
		t.Error("Encrypted value should differ from plaintext")
	}

	decrypted, err := DecryptCredential(encrypted, key)
	if err != nil {
		t.Fatalf("Failed to decrypt: %v", err)
	}
	if decrypted != secret {
		t.Errorf("Round-trip mismatch: got %q, want %q", decrypted, secret)
	}

	// Wrong key must fail, not return garbage
	if _, err := DecryptCredential(encrypted, "other-passphrase"); err == nil {
		t.Error("Decryption with wrong key should fail")
	}

	// Empty plaintext round-trips to empty
	empty, err := EncryptCredential("", key)
	if err != nil || empty != "" {
		t.Errorf("Empty plaintext should encrypt to empty, got %q (err %v)", empty, err)
	}

	// Missing key is a typed error
	if _, err := EncryptCredential(secret, ""); err != ErrNoEncryptionKey {
		t.Errorf("Expected ErrNoEncryptionKey, got %v", err)
	}
}
