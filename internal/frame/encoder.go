package frame

import (
	"encoding/binary"
	"math"

	"frpg2-server/internal/cipher"
)

// serverTrailer is the 16-byte trailer the server appends after its
// header on every outbound frame. The client→server direction never
// carries a trailer at all (see Decoder); this exact byte pattern is
// what was observed on the wire in the server→client direction.
var serverTrailer = [16]byte{
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// Encoder is the write-side half of the codec.
type Encoder struct {
	hasTrailer bool
	cipher     cipher.Mode
}

// NewEncoder builds an Encoder bound to mode. The server's outbound
// direction always sets hasTrailer true.
func NewEncoder(mode cipher.Mode, hasTrailer bool) *Encoder {
	return &Encoder{cipher: mode, hasTrailer: hasTrailer}
}

// SetCipherMode swaps the active cipher mode, mirroring Decoder.
func (e *Encoder) SetCipherMode(mode cipher.Mode) {
	e.cipher = mode
}

// Encode encrypts f.Data under the current cipher and returns the
// complete wire representation: header, optional trailer, ciphertext.
func (e *Encoder) Encode(f Frame) ([]byte, error) {
	ciphertext, err := e.cipher.Encrypt(f.Data)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	if len(ciphertext) > math.MaxUint16 || len(ciphertext) < 14 {
		return nil, ErrInvalidSize
	}
	length := uint32(len(ciphertext))

	headerSize := LoginHeaderSize
	if e.hasTrailer {
		headerSize += 16
	}

	out := make([]byte, headerSize+len(ciphertext))

	binary.BigEndian.PutUint16(out[0:2], uint16(length-2))
	binary.BigEndian.PutUint16(out[2:4], f.GlobalCounter)
	binary.BigEndian.PutUint16(out[4:6], 0)
	binary.BigEndian.PutUint32(out[6:10], length-14)
	binary.BigEndian.PutUint32(out[10:14], length-14)
	binary.BigEndian.PutUint32(out[14:18], 0)
	binary.BigEndian.PutUint32(out[18:22], 0)
	binary.LittleEndian.PutUint32(out[22:26], f.Counter)

	if e.hasTrailer {
		copy(out[26:42], serverTrailer[:])
	}

	copy(out[headerSize:], ciphertext)
	return out, nil
}
