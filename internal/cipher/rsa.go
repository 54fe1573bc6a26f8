package cipher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"math/big"
)

// rsaMode wraps a private key and a padding choice. The server holds a
// single RSA key pair and exercises it in two directions at once: OAEP
// inbound (ordinary decryption) and X9.31 outbound (a signing-style raw
// operation used creatively as encryption), so the two directions never
// share a code path even though they share a key.
type rsaMode struct {
	key     *rsa.PrivateKey
	padding RSAPadding
}

func (m *rsaMode) String() string {
	if m.padding == RSAPaddingX931 {
		return "rsa-x931"
	}
	return "rsa-oaep"
}

func (m *rsaMode) Encrypt(plaintext []byte) ([]byte, error) {
	switch m.padding {
	case RSAPaddingX931:
		return rsaX931Encrypt(m.key, plaintext)
	default:
		ciphertext, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, &m.key.PublicKey, plaintext, nil)
		if err != nil {
			return nil, ErrInvalidCiphertext
		}
		return ciphertext, nil
	}
}

func (m *rsaMode) Decrypt(ciphertext []byte) ([]byte, error) {
	switch m.padding {
	case RSAPaddingX931:
		return rsaX931Decrypt(m.key, ciphertext)
	default:
		plaintext, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, m.key, ciphertext, nil)
		if err != nil {
			return nil, ErrInvalidCiphertext
		}
		return plaintext, nil
	}
}

// X9.31 (OpenSSL padding code 5) block layout for a modulus of size n
// bytes and a message of length flen: header byte (0x6A when the message
// fills the block with no room for a separator, 0x6B otherwise), then
// j-1 bytes of 0xBB filler, a 0xBA separator, the message, and a
// trailing 0xCC — mirroring OpenSSL's RSA_padding_add/check_X931. Go's
// crypto/rsa does not implement this padding (only PKCS1v15 and OAEP),
// so the pad/unpad and the raw modular exponentiation are both done by
// hand here against the key's exported D/N (private) and E/N (public)
// fields — see DESIGN.md.

func rsaX931Pad(n int, message []byte) ([]byte, error) {
	flen := len(message)
	if flen+2 > n {
		return nil, ErrInvalidCiphertext
	}

	block := make([]byte, n)
	if flen+2 == n {
		block[0] = 0x6A
		copy(block[1:1+flen], message)
		block[n-1] = 0xCC
		return block, nil
	}

	j := n - flen - 2
	block[0] = 0x6B
	for i := 1; i < j; i++ {
		block[i] = 0xBB
	}
	block[j] = 0xBA
	copy(block[j+1:j+1+flen], message)
	block[n-1] = 0xCC
	return block, nil
}

func rsaX931Unpad(block []byte) ([]byte, error) {
	n := len(block)
	if n < 3 || block[n-1] != 0xCC {
		return nil, ErrInvalidCiphertext
	}

	switch block[0] {
	case 0x6A:
		return block[1 : n-1], nil
	case 0x6B:
		i := 1
		for i < n-1 && block[i] == 0xBB {
			i++
		}
		if i >= n-1 || block[i] != 0xBA {
			return nil, ErrInvalidCiphertext
		}
		return block[i+1 : n-1], nil
	default:
		return nil, ErrInvalidCiphertext
	}
}

// rsaX931Encrypt performs the raw private-key modular exponentiation
// (c = m^d mod n) over an X9.31-padded block — the signing-style
// operation the server uses as its outbound envelope.
func rsaX931Encrypt(key *rsa.PrivateKey, plaintext []byte) ([]byte, error) {
	n := key.Size()
	padded, err := rsaX931Pad(n, plaintext)
	if err != nil {
		return nil, err
	}

	m := new(big.Int).SetBytes(padded)
	if m.Cmp(key.N) >= 0 {
		return nil, ErrInvalidCiphertext
	}

	c := new(big.Int).Exp(m, key.D, key.N)
	return leftPad(c.Bytes(), n), nil
}

// rsaX931Decrypt performs the corresponding public-key operation
// (m = c^e mod n) to recover and unpad an X9.31 block. The server never
// calls this in the handshake (X9.31 is outbound-only) but it rounds out
// the Mode interface and is exercised directly by the cipher package's
// own round-trip tests.
func rsaX931Decrypt(key *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	n := key.Size()
	if len(ciphertext) != n {
		return nil, ErrInvalidCiphertext
	}

	c := new(big.Int).SetBytes(ciphertext)
	e := big.NewInt(int64(key.PublicKey.E))
	m := new(big.Int).Exp(c, e, key.N)

	return rsaX931Unpad(leftPad(m.Bytes(), n))
}

func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
