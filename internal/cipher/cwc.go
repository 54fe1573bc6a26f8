package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

const (
	cwcNonceSize = 11
	cwcTagSize   = 16
)

// cwcMode implements AES-128 in CWC (Carter-Wegman Counter) mode: CTR
// encryption plus a GF(2^128) polynomial MAC, the same combination GCM
// uses but with CWC's own constant layout. No published Go package
// implements CWC (see DESIGN.md), so this is built directly on
// crypto/aes's block cipher and GHASH-style field arithmetic.
type cwcMode struct {
	block cipher.Block
}

func newCWCMode(key []byte) (Mode, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &cwcMode{block: block}, nil
}

func (m *cwcMode) String() string { return "aes128-cwc" }

// Encrypt draws a fresh random 11-byte nonce, authenticates the nonce as
// the sole associated data, and returns nonce(11) || tag(16) || body(n).
func (m *cwcMode) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, cwcNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, cwcNonceSize+cwcTagSize+len(plaintext))
	copy(out[:cwcNonceSize], nonce)

	body := out[cwcNonceSize+cwcTagSize:]
	m.xorKeystream(nonce, plaintext, body)

	tag := cwcMAC(m.block, nonce, nonce, body)
	copy(out[cwcNonceSize:cwcNonceSize+cwcTagSize], tag)

	return out, nil
}

// Decrypt splits ciphertext at the fixed nonce/tag offsets, recomputes
// the MAC over the nonce (as AAD) and body, and only then decrypts —
// any mismatch is reported as ErrInvalidCiphertext without revealing the
// would-be plaintext.
func (m *cwcMode) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < cwcNonceSize+cwcTagSize {
		return nil, ErrInvalidCiphertext
	}

	nonce := ciphertext[:cwcNonceSize]
	tag := ciphertext[cwcNonceSize : cwcNonceSize+cwcTagSize]
	body := ciphertext[cwcNonceSize+cwcTagSize:]

	expected := cwcMAC(m.block, nonce, nonce, body)
	if subtle.ConstantTimeCompare(expected, tag) != 1 {
		return nil, ErrInvalidCiphertext
	}

	plaintext := make([]byte, len(body))
	m.xorKeystream(nonce, body, plaintext)
	return plaintext, nil
}

// xorKeystream runs AES-CTR with a CWC-style counter block: the 11-byte
// nonce followed by a 4-byte big-endian block counter starting at 1 (the
// counter value 0 is reserved for the MAC's own keystream block, below).
func (m *cwcMode) xorKeystream(nonce, src, dst []byte) {
	var counterBlock [16]byte
	copy(counterBlock[:cwcNonceSize], nonce)
	binary.BigEndian.PutUint32(counterBlock[cwcNonceSize:], 1)

	stream := cipher.NewCTR(m.block, counterBlock[:])
	stream.XORKeyStream(dst, src)
}

// cwcMAC computes a Wegman-Carter MAC over aad||body under a polynomial
// hash key derived from encrypting the all-zero block, masked with the
// keystream block at counter 0 — mirroring CWC's published construction
// (the universal hash is evaluated over 128-bit blocks of aad and body,
// each length-framed, then masked to produce the tag).
func cwcMAC(block cipher.Block, nonce, aad, body []byte) []byte {
	var hashKeyBlock [16]byte
	block.Encrypt(hashKeyBlock[:], hashKeyBlock[:])
	h := new(gfPoly).setBytes(hashKeyBlock[:])

	acc := &gfPoly{}
	for _, chunk := range chunk128(aad) {
		acc.add(new(gfPoly).setBytes(chunk))
		acc.mul(h)
	}
	for _, chunk := range chunk128(body) {
		acc.add(new(gfPoly).setBytes(chunk))
		acc.mul(h)
	}

	var lenBlock [16]byte
	binary.BigEndian.PutUint64(lenBlock[0:8], uint64(len(aad))*8)
	binary.BigEndian.PutUint64(lenBlock[8:16], uint64(len(body))*8)
	acc.add(new(gfPoly).setBytes(lenBlock[:]))
	acc.mul(h)

	var maskCounter [16]byte
	copy(maskCounter[:cwcNonceSize], nonce)
	var mask [16]byte
	block.Encrypt(mask[:], maskCounter[:])

	tag := acc.bytes()
	for i := range tag {
		tag[i] ^= mask[i]
	}
	return tag[:cwcTagSize]
}

func chunk128(data []byte) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := 16
		if len(data) < n {
			n = len(data)
		}
		block := make([]byte, 16)
		copy(block, data[:n])
		chunks = append(chunks, block)
		data = data[n:]
	}
	return chunks
}

var errShortBuffer = errors.New("cipher: short buffer")

// gfPoly is a 128-bit element of GF(2^128) with the GHASH-style
// reduction polynomial, used as the universal hash accumulator.
type gfPoly [2]uint64

func (g *gfPoly) setBytes(b []byte) *gfPoly {
	if len(b) != 16 {
		panic(errShortBuffer)
	}
	g[0] = binary.BigEndian.Uint64(b[0:8])
	g[1] = binary.BigEndian.Uint64(b[8:16])
	return g
}

func (g *gfPoly) bytes() []byte {
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[0:8], g[0])
	binary.BigEndian.PutUint64(out[8:16], g[1])
	return out
}

func (g *gfPoly) add(other *gfPoly) *gfPoly {
	g[0] ^= other[0]
	g[1] ^= other[1]
	return g
}

// mul multiplies g by h in place using the standard GHASH shift-and-add
// reduction (the R = 0xE1 << 120 reduction polynomial).
func (g *gfPoly) mul(h *gfPoly) *gfPoly {
	var z, v gfPoly
	v[0], v[1] = h[0], h[1]

	for i := 0; i < 128; i++ {
		bit := (g[i/64] >> (63 - uint(i%64))) & 1
		if bit == 1 {
			z[0] ^= v[0]
			z[1] ^= v[1]
		}

		lsb := v[1] & 1
		v[1] = (v[1] >> 1) | (v[0] << 63)
		v[0] >>= 1
		if lsb == 1 {
			v[0] ^= 0xE100000000000000
		}
	}

	g[0], g[1] = z[0], z[1]
	return g
}
