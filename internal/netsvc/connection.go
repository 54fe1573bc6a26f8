// Package netsvc implements the connection and server harness shared by
// the login, auth, and game services: a single-goroutine-per-connection
// model with a fixed four-channel interface, and a generic TCP/UDP accept
// loop with bounded backoff.
package netsvc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"

	"frpg2-server/internal/cipher"
	"frpg2-server/internal/frame"

	"go.uber.org/zap"
)

const (
	inboundQueueSize      = 10
	outboundQueueSize     = 10
	cipherChangeQueueSize = 1
	readChunkQueueSize    = 1
)

// CipherPair is the (inbound, outbound) cipher mode a connection starts
// with — the login and auth services both start at {OAEP, X9.31} before
// switching to a shared AES-128-CWC mode mid-handshake.
type CipherPair struct {
	Inbound  cipher.Mode
	Outbound cipher.Mode
}

// Connection owns one TCP stream. The goroutine started by Start is the
// single owner of the stream and both codecs; everything else — readers,
// writers, the cipher switch, shutdown — talks to it only through the
// four channels below, so no frame is ever read, written, or re-keyed
// from two goroutines at once.
type Connection struct {
	log *zap.Logger

	inboundFrames  chan frame.Frame
	outboundFrames chan frame.Frame
	cipherChange   chan cipher.Mode
	closeOnce      chan struct{}

	done chan struct{}
}

// Start spawns the connection's owning goroutine over stream and returns
// immediately; Start never blocks on I/O.
func Start(log *zap.Logger, pair CipherPair, stream net.Conn) *Connection {
	c := &Connection{
		log:            log,
		inboundFrames:  make(chan frame.Frame, inboundQueueSize),
		outboundFrames: make(chan frame.Frame, outboundQueueSize),
		cipherChange:   make(chan cipher.Mode, cipherChangeQueueSize),
		closeOnce:      make(chan struct{}),
		done:           make(chan struct{}),
	}

	go c.run(pair, stream)
	return c
}

// run is the connection's single owning goroutine: it is the only code
// that ever touches dec/enc, so a cipher switch can never race a Decode
// or Encode call. readLoop hands over raw bytes only — never the
// Decoder itself — which is what keeps decoding, and therefore the
// cipher switch, on this one goroutine (the same structure as the
// original's frame_reader.next() and cipher_change_rx sharing a single
// select!).
func (c *Connection) run(pair CipherPair, stream net.Conn) {
	defer close(c.done)

	dec := frame.NewDecoder(pair.Inbound, false)
	enc := frame.NewEncoder(pair.Outbound, true)
	buf := &bytes.Buffer{}

	readErrs := make(chan error, 1)
	chunks := make(chan []byte, readChunkQueueSize)
	readerDone := make(chan struct{})
	stopped := make(chan struct{})
	go c.readLoop(stream, chunks, readErrs, readerDone, stopped)

	// Closing stopped first lets readLoop give up on a blocked send
	// instead of leaking; stream.Close() then unblocks a pending Read,
	// and only then do we wait for the goroutine to actually exit.
	defer func() {
		close(stopped)
		stream.Close()
		<-readerDone
	}()

	for {
		f, err := dec.Decode(buf)
		if err != nil {
			c.log.Error("error while decoding frame", zap.Error(err))
			return
		}
		if f != nil {
			select {
			case c.inboundFrames <- *f:
			case <-c.closeOnce:
				return
			}
			continue
		}

		select {
		case newCipher, ok := <-c.cipherChange:
			if !ok {
				c.log.Debug("cipher channel closed")
				return
			}
			c.log.Debug("cipher change")
			dec.SetCipherMode(newCipher)
			enc.SetCipherMode(newCipher)

		case chunk, ok := <-chunks:
			if !ok {
				continue
			}
			buf.Write(chunk)

		case err := <-readErrs:
			if errors.Is(err, io.EOF) {
				c.log.Debug("connection closed by peer")
			} else {
				c.log.Error("error while reading frame", zap.Error(err))
			}
			return

		case f, ok := <-c.outboundFrames:
			if !ok {
				continue
			}
			wire, err := enc.Encode(f)
			if err != nil {
				c.log.Error("error while encoding frame", zap.Error(err))
				return
			}
			if _, err := stream.Write(wire); err != nil {
				c.log.Error("error while writing frame", zap.Error(err))
				return
			}

		case <-c.closeOnce:
			c.log.Debug("received close signal")
			return
		}
	}
}

// readLoop does nothing but read bytes off stream and hand copies to
// chunks — it never touches a Decoder, so the owning goroutine's cipher
// switches are never subject to a concurrent Decode.
func (c *Connection) readLoop(stream net.Conn, chunks chan<- []byte, errs chan<- error, done chan<- struct{}, stopped <-chan struct{}) {
	defer close(done)

	for {
		chunk := make([]byte, 4096)
		n, err := stream.Read(chunk)
		if n > 0 {
			select {
			case chunks <- chunk[:n]:
			case <-stopped:
				return
			}
		}
		if err != nil {
			select {
			case errs <- err:
			case <-stopped:
			}
			return
		}
	}
}

// ChangeCipherMode switches both directions to mode, observed by the
// owning goroutine between frame boundaries.
func (c *Connection) ChangeCipherMode(ctx context.Context, mode cipher.Mode) {
	select {
	case c.cipherChange <- mode:
	case <-ctx.Done():
	case <-c.done:
	}
}

// Close signals the connection to shut down. It is safe to call more
// than once.
func (c *Connection) Close() {
	select {
	case <-c.closeOnce:
	default:
		close(c.closeOnce)
	}
}

// Done is closed once the owning goroutine has exited and the stream is
// closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// ReadFrame blocks for the next inbound frame, or returns false if the
// connection closed without producing one.
func (c *Connection) ReadFrame(ctx context.Context) (frame.Frame, bool) {
	select {
	case f, ok := <-c.inboundFrames:
		return f, ok
	case <-ctx.Done():
		return frame.Frame{}, false
	case <-c.done:
		return frame.Frame{}, false
	}
}

// WriteFrame enqueues f for the owning goroutine to encode and send.
func (c *Connection) WriteFrame(ctx context.Context, f frame.Frame) {
	select {
	case c.outboundFrames <- f:
	case <-ctx.Done():
	case <-c.done:
	}
}
