package cipher_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"frpg2-server/internal/cipher"

	"github.com/stretchr/testify/require"
)

func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	return key
}

func TestRSAX931RoundTrip(t *testing.T) {
	key := generateTestKey(t)
	outbound := cipher.NewRSAMode(key, cipher.RSAPaddingX931)
	inbound := cipher.NewRSAMode(key, cipher.RSAPaddingX931)

	plaintext := []byte("0123456789abcdef")
	ciphertext, err := outbound.Encrypt(plaintext)
	require.NoError(t, err)
	require.Len(t, ciphertext, key.Size())

	got, err := inbound.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestRSAOAEPRoundTrip(t *testing.T) {
	key := generateTestKey(t)
	mode := cipher.NewRSAMode(key, cipher.RSAPaddingOAEP)

	plaintext := []byte("aes-128-cwc-key!")
	ciphertext, err := mode.Encrypt(plaintext)
	require.NoError(t, err)

	got, err := mode.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestRSAX931RejectsCorruptBlock(t *testing.T) {
	key := generateTestKey(t)
	mode := cipher.NewRSAMode(key, cipher.RSAPaddingX931)

	ciphertext, err := mode.Encrypt([]byte("payload"))
	require.NoError(t, err)

	ciphertext[len(ciphertext)/2] ^= 0xFF

	_, err = mode.Decrypt(ciphertext)
	require.ErrorIs(t, err, cipher.ErrInvalidCiphertext)
}

func TestRSAOAEPRejectsCorruptBlock(t *testing.T) {
	key := generateTestKey(t)
	mode := cipher.NewRSAMode(key, cipher.RSAPaddingOAEP)

	ciphertext, err := mode.Encrypt([]byte("payload"))
	require.NoError(t, err)

	ciphertext[0] ^= 0xFF

	_, err = mode.Decrypt(ciphertext)
	require.ErrorIs(t, err, cipher.ErrInvalidCiphertext)
}
