// Package crypto provides authenticated encryption for the short secrets the
// platform stores at rest, currently the Mercury API key. The cipher is an
// explicit dependency: construct it once in main and hand it to whatever
// needs it.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

var (
	// ErrSecretRequired means the process-wide secret is not configured.
	ErrSecretRequired = errors.New("credential secret is required")
	// ErrDecrypt means the ciphertext is tampered, truncated, or was
	// produced under a different secret.
	ErrDecrypt = errors.New("ciphertext authentication failed")
)

// kdfIterations is the PBKDF2 iteration count. Changing it invalidates every
// stored ciphertext, so it is fixed.
const kdfIterations = 100_000

// kdfSalt is a fixed process-wide salt. The secret itself is the only input
// that must stay private; the salt only separates this key from other uses of
// the same secret. Fixed so restarts derive the same key.
var kdfSalt = []byte("mercsync/credentials/v1")

// Cipher encrypts and decrypts short strings with AES-256-GCM under a key
// derived from the configured secret.
type Cipher struct {
	aead cipher.AEAD
}

// New derives the encryption key from secret and returns a ready Cipher.
// An empty secret is a configuration error surfaced immediately.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, ErrSecretRequired
	}

	key := pbkdf2.Key([]byte(secret), kdfSalt, kdfIterations, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt returns url-safe base64 of nonce||ciphertext||tag. The empty
// string passes through unchanged so unset credentials stay unset.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed, truncated or tampered input fails
// with ErrDecrypt; callers must not swallow it outside the documented
// legacy-plaintext read path.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}

// IsCiphertext reports whether value decrypts under this cipher. Used by the
// credential setter to detect values that are already encrypted.
func (c *Cipher) IsCiphertext(value string) bool {
	if value == "" {
		return false
	}

	_, err := c.Decrypt(value)

	return err == nil
}
