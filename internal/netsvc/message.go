package netsvc

import (
	"context"
	"errors"

	"frpg2-server/internal/frame"
)

// ProtoMessage is the minimal interface the hand-authored frpg2_request
// message types satisfy — just enough for write_message/read_message to
// stay generic over which message is being sent.
type ProtoMessage interface {
	Marshal() []byte
}

// ProtoMessageUnmarshaler is implemented by the pointer-receiver side of
// a ProtoMessage, consumed by read_message to decode into a caller-owned
// value.
type ProtoMessageUnmarshaler interface {
	Unmarshal([]byte) error
}

// ErrConnectionClosed is returned by ReadMessage/ReadData when the
// connection produced no frame because it closed first.
var ErrConnectionClosed = errors.New("netsvc: connection closed")

// WriteMessage serialises message and enqueues it as a Frame carrying the
// given counters, mirroring write_message(conn, msg, global_counter,
// counter) from the original connection helpers.
func WriteMessage(ctx context.Context, conn *Connection, message ProtoMessage, globalCounter uint16, counter uint32) {
	conn.WriteFrame(ctx, frame.NewFrame(globalCounter, counter, message.Marshal()))
}

// ReadMessage blocks for the next frame and decodes its body into out,
// returning the counters that travelled with it so the caller can keep
// echoing them.
func ReadMessage(ctx context.Context, conn *Connection, out ProtoMessageUnmarshaler) (globalCounter uint16, counter uint32, err error) {
	f, ok := conn.ReadFrame(ctx)
	if !ok {
		return 0, 0, ErrConnectionClosed
	}
	if err := out.Unmarshal(f.Data); err != nil {
		return 0, 0, err
	}
	return f.GlobalCounter, f.Counter, nil
}

// WriteData enqueues a raw, non-protobuf byte buffer as a Frame body —
// used for the two exchanges in the auth handshake that aren't
// protobuf-encoded (the CWC sync block and the nonce/ticket exchange).
// There is no Rust source for this helper in the retrieved pack; it is
// authored here by direct analogy to WriteMessage/ReadMessage, which are
// grounded on net/message.rs.
func WriteData(ctx context.Context, conn *Connection, data []byte, globalCounter uint16, counter uint32) {
	conn.WriteFrame(ctx, frame.NewFrame(globalCounter, counter, data))
}

// ReadData blocks for the next frame and returns its raw body along with
// the counters it carried.
func ReadData(ctx context.Context, conn *Connection) (data []byte, globalCounter uint16, counter uint32, err error) {
	f, ok := conn.ReadFrame(ctx)
	if !ok {
		return nil, 0, 0, ErrConnectionClosed
	}
	return f.Data, f.GlobalCounter, f.Counter, nil
}
