// Package cipher implements the two cryptographic envelopes the frame
// codec switches between: an RSA private-key operation used during the
// handshake, and AES-128-CWC used for the remainder of a session.
package cipher

import (
	"crypto/rsa"
	"errors"
)

// ErrInvalidCiphertext is returned for any cryptographic failure: a
// malformed RSA block, a CWC tag mismatch, or a ciphertext shorter than
// the mode's fixed overhead. Callers never get more detail than this —
// the wire protocol doesn't distinguish failure causes either.
var ErrInvalidCiphertext = errors.New("cipher: invalid ciphertext")

// RSAPadding selects which padding an RSA-mode cipher applies. The two
// constants correspond to the private key being exercised in two
// unconventional directions: a signing-style raw operation outbound, and
// a standard decryption padding inbound.
type RSAPadding int

const (
	// RSAPaddingX931 is X9.31 padding (OpenSSL padding code 5), applied as
	// a raw private-key operation — used for the server's outbound
	// direction.
	RSAPaddingX931 RSAPadding = iota
	// RSAPaddingOAEP is RSA-OAEP as implemented by crypto/rsa — used for
	// the server's inbound direction.
	RSAPaddingOAEP
)

// Mode is a cipher envelope bound to a specific key and, for the RSA
// variant, a specific padding. It is the Go analogue of CipherMode: a
// closed tagged union over which direction of the key pair this mode
// exercises.
type Mode interface {
	// Encrypt seals plaintext, returning ErrInvalidCiphertext only when
	// the plaintext cannot be represented (RSA payload too large for the
	// modulus).
	Encrypt(plaintext []byte) ([]byte, error)
	// Decrypt opens ciphertext, returning ErrInvalidCiphertext on any
	// cryptographic failure.
	Decrypt(ciphertext []byte) ([]byte, error)
	// String names the mode for log lines ("rsa-x931", "rsa-oaep",
	// "aes128-cwc").
	String() string
}

// NewRSAMode builds an RSA cipher mode bound to key using the given
// padding. Output length always equals the key's modulus byte length;
// trailing zero-padding beyond the true output is trimmed by the
// underlying operation, never by the caller.
func NewRSAMode(key *rsa.PrivateKey, padding RSAPadding) Mode {
	return &rsaMode{key: key, padding: padding}
}

// NewAES128CWCMode builds an AES-128-CWC AEAD mode bound to a 16-byte key.
func NewAES128CWCMode(key []byte) (Mode, error) {
	return newCWCMode(key)
}
