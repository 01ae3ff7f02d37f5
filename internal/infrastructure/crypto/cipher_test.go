package crypto_test

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odv/mercsync/internal/infrastructure/crypto"
)

func TestNew_MissingSecret(t *testing.T) {
	_, err := crypto.New("")
	require.ErrorIs(t, err, crypto.ErrSecretRequired)
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	tests := []string{
		"sk_live_ABCDEF",
		"short",
		"a much longer credential value with spaces and symbols !@#$%",
		"unicode: 日本語 ключ",
	}

	for _, plaintext := range tests {
		ciphertext, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		// ASCII-safe url-safe base64
		_, err = base64.URLEncoding.DecodeString(ciphertext)
		require.NoError(t, err)

		got, err := c.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestCipher_EmptyString(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", ciphertext)

	plaintext, err := c.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", plaintext)
}

func TestCipher_NonceUniqueness(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	a, err := c.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)
	b, err := c.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "two encryptions of the same plaintext must differ")
}

func TestCipher_Tamper(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(ciphertext)
	require.NoError(t, err)

	// Flip one byte in the middle of the sealed payload.
	raw[len(raw)/2] ^= 0x01
	tampered := base64.URLEncoding.EncodeToString(raw)

	_, err = c.Decrypt(tampered)
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestCipher_Truncated(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	_, err = c.Decrypt("dG9vLXNob3J0")
	assert.ErrorIs(t, err, crypto.ErrDecrypt)

	_, err = c.Decrypt("not valid base64!!!")
	assert.ErrorIs(t, err, crypto.ErrDecrypt)
}

func TestCipher_WrongKey(t *testing.T) {
	c1, err := crypto.New("secret-one")
	require.NoError(t, err)
	c2, err := crypto.New("secret-two")
	require.NoError(t, err)

	ciphertext, err := c1.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)

	_, err = c2.Decrypt(ciphertext)
	assert.True(t, errors.Is(err, crypto.ErrDecrypt))
}

func TestCipher_DeterministicKeyAcrossRestarts(t *testing.T) {
	// Two independently constructed ciphers from the same secret must
	// decrypt each other's output, otherwise restarts lose every credential.
	c1, err := crypto.New("stable-secret")
	require.NoError(t, err)
	c2, err := crypto.New("stable-secret")
	require.NoError(t, err)

	ciphertext, err := c1.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)

	got, err := c2.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "sk_live_ABCDEF", got)
}

func TestCipher_IsCiphertext(t *testing.T) {
	c, err := crypto.New("test-secret")
	require.NoError(t, err)

	ciphertext, err := c.Encrypt("sk_live_ABCDEF")
	require.NoError(t, err)

	assert.True(t, c.IsCiphertext(ciphertext))
	assert.False(t, c.IsCiphertext("sk_live_ABCDEF"))
	assert.False(t, c.IsCiphertext(""))
}
