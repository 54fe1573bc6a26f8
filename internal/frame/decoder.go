package frame

import (
	"bytes"
	"encoding/binary"

	"frpg2-server/internal/cipher"
)

// decoderPhase mirrors FrameDecoderState: the decoder alternates between
// waiting for a full header and waiting for a full (still-encrypted) body.
type decoderPhase int

const (
	phaseHeader decoderPhase = iota
	phaseData
)

// Decoder is the read-side half of the codec. It owns no I/O of its own:
// callers append newly-read bytes to a buffer and call Decode repeatedly.
// Decode consumes the header once all of it is buffered (remembering it
// in the Data phase) and the body once all of it is buffered; a partial
// header or partial body is left in the buffer untouched, so a Decoder can
// be fed one byte at a time with no loss of state.
type Decoder struct {
	hasTrailer bool
	phase      decoderPhase
	pending    struct {
		length        int
		counter       uint32
		globalCounter uint16
	}
	cipher cipher.Mode
}

// NewDecoder builds a Decoder bound to mode. hasTrailer selects whether an
// additional 16-byte trailer follows the 26-byte header; the client→server
// direction never carries one.
func NewDecoder(mode cipher.Mode, hasTrailer bool) *Decoder {
	return &Decoder{cipher: mode, hasTrailer: hasTrailer}
}

// SetCipherMode swaps the active cipher mode, used at the handshake's
// RSA→AES-CWC switch. The caller is responsible for only doing this
// between frames (the Connection goroutine guarantees this).
func (d *Decoder) SetCipherMode(mode cipher.Mode) {
	d.cipher = mode
}

func (d *Decoder) headerSize() int {
	if d.hasTrailer {
		return LoginHeaderSize + 16
	}
	return LoginHeaderSize
}

// Decode attempts to produce one Frame from buf. It returns (nil, nil)
// when more bytes are needed; in that case it consumes nothing, except a
// header that has just arrived in full, which is parsed and removed from
// buf while the decoder waits for the body.
func (d *Decoder) Decode(buf *bytes.Buffer) (*Frame, error) {
	if d.phase == phaseHeader {
		ok, err := d.decodeHeader(buf)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	if buf.Len() < d.pending.length {
		return nil, nil
	}

	ciphertext := make([]byte, d.pending.length)
	copy(ciphertext, buf.Next(d.pending.length))

	plaintext, err := d.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	f := NewFrame(d.pending.globalCounter, d.pending.counter, plaintext)
	d.phase = phaseHeader
	return &f, nil
}

// decodeHeader parses the fixed header once enough bytes are buffered,
// validating the two redundant length fields against each other.
func (d *Decoder) decodeHeader(buf *bytes.Buffer) (bool, error) {
	headerSize := d.headerSize()
	if buf.Len() < headerSize {
		return false, nil
	}

	b := buf.Next(headerSize)

	packetLength := binary.BigEndian.Uint16(b[0:2])
	globalCounter := binary.BigEndian.Uint16(b[2:4])
	// b[4:6] unknown, always observed zero.

	lengthA := binary.BigEndian.Uint32(b[6:10])
	lengthB := binary.BigEndian.Uint32(b[10:14])

	total := uint32(packetLength) + 2
	if total != lengthA+14 || total != lengthB+14 {
		return false, ErrInvalidSize
	}

	// b[14:18], b[18:22] unknown, always observed zero.
	counter := binary.LittleEndian.Uint32(b[22:26])

	d.pending.length = int(total)
	d.pending.counter = counter
	d.pending.globalCounter = globalCounter
	d.phase = phaseData
	return true, nil
}
