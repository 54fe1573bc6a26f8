package cipher_test

import (
	"crypto/rand"
	"testing"

	"frpg2-server/internal/cipher"

	"github.com/stretchr/testify/require"
)

func TestCWCRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)

	mode, err := cipher.NewAES128CWCMode(key)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ciphertext, err := mode.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)

	got, err := mode.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestCWCEmptyPlaintext(t *testing.T) {
	key := make([]byte, 16)
	mode, err := cipher.NewAES128CWCMode(key)
	require.NoError(t, err)

	ciphertext, err := mode.Encrypt(nil)
	require.NoError(t, err)
	require.Len(t, ciphertext, 27) // nonce(11) + tag(16) + body(0)

	got, err := mode.Decrypt(ciphertext)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCWCTamperedTagRejected(t *testing.T) {
	key := make([]byte, 16)
	mode, err := cipher.NewAES128CWCMode(key)
	require.NoError(t, err)

	ciphertext, err := mode.Encrypt([]byte("payload"))
	require.NoError(t, err)

	ciphertext[15] ^= 0x01 // inside the 16-byte tag

	_, err = mode.Decrypt(ciphertext)
	require.ErrorIs(t, err, cipher.ErrInvalidCiphertext)
}

func TestCWCTamperedBodyRejected(t *testing.T) {
	key := make([]byte, 16)
	mode, err := cipher.NewAES128CWCMode(key)
	require.NoError(t, err)

	ciphertext, err := mode.Encrypt([]byte("payload"))
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] ^= 0x01 // inside the body

	_, err = mode.Decrypt(ciphertext)
	require.ErrorIs(t, err, cipher.ErrInvalidCiphertext)
}

func TestCWCShortCiphertextRejected(t *testing.T) {
	key := make([]byte, 16)
	mode, err := cipher.NewAES128CWCMode(key)
	require.NoError(t, err)

	_, err = mode.Decrypt(make([]byte, 10))
	require.ErrorIs(t, err, cipher.ErrInvalidCiphertext)
}
