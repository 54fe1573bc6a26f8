package netsvc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"frpg2-server/internal/netsvc"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopHandler struct{}

func (nopHandler) Description() string { return "nop" }
func (nopHandler) Run(ctx context.Context, conn *netsvc.Connection, appCtx struct{}) {
	<-conn.Done()
}

// TestTCPServerAcceptsConnections is a smoke test: a handler that only
// waits for the connection to end should let the server accept and
// dispatch without error, up to the point the caller cancels it.
func TestTCPServerAcceptsConnections(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	mode := newCWC(t)
	pair := netsvc.CipherPair{Inbound: mode, Outbound: mode}

	server := netsvc.NewTCPServer(zap.NewNop(), addr, pair, struct{}{}, func() nopHandler {
		return nopHandler{}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	// Give the listener a moment to bind before dialing.
	var conn net.Conn
	for i := 0; i < 20; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	conn.Close()

	<-ctx.Done()
	err = <-done
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
