package netsvc

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectionHandler is run once per accepted connection, on its own
// goroutine, with a fresh zero-valued Handler value — the Go analogue of
// the ConnectionHandler trait's Default + run(&mut self, ...).
type ConnectionHandler[Ctx any] interface {
	Description() string
	Run(ctx context.Context, conn *Connection, appCtx Ctx)
}

// TCPServer binds one address and, for every accepted connection, starts
// a Connection with the configured cipher pair and spawns a fresh
// Handler against it. Ctx is cloned (cheaply — it is expected to be a
// small handle over shared state) for every connection.
type TCPServer[Ctx any, H ConnectionHandler[Ctx]] struct {
	log         *zap.Logger
	bindAddress string
	cipherPair  CipherPair
	appCtx      Ctx
	newHandler  func() H
}

// NewTCPServer builds a server bound to bindAddress. newHandler must
// return a fresh, zero-valued handler on every call.
func NewTCPServer[Ctx any, H ConnectionHandler[Ctx]](log *zap.Logger, bindAddress string, cipherPair CipherPair, appCtx Ctx, newHandler func() H) *TCPServer[Ctx, H] {
	return &TCPServer[Ctx, H]{
		log:         log,
		bindAddress: bindAddress,
		cipherPair:  cipherPair,
		appCtx:      appCtx,
		newHandler:  newHandler,
	}
}

// Run binds and accepts until ctx is cancelled or accept fails beyond the
// bounded backoff below, matching net/server.rs's accept loop: 500ms,
// then 1000ms, then fatal on the third consecutive failure.
func (s *TCPServer[Ctx, H]) Run(ctx context.Context) error {
	description := s.newHandler().Description()
	s.log.Info("starting server", zap.String("service", description))

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.bindAddress)
	if err != nil {
		return fmt.Errorf("error binding to %s: %w", s.bindAddress, err)
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.log.Info("now waiting for connections", zap.String("service", description), zap.String("address", s.bindAddress))

	backoff := 500 * time.Millisecond
	retryCount := 1

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if retryCount >= 3 {
				return fmt.Errorf("error while accepting connection on %s: %w", s.bindAddress, err)
			}

			s.log.Warn("error accepting connection, retrying",
				zap.String("service", description), zap.Error(err), zap.Duration("backoff", backoff))
			time.Sleep(backoff)
			retryCount++
			backoff *= 2
			continue
		}

		retryCount = 1
		backoff = 500 * time.Millisecond

		connID := uuid.New()
		connLog := s.log.With(zap.String("service", description), zap.String("conn_id", connID.String()))

		connection := Start(connLog, s.cipherPair, conn)

		go func() {
			defer func() {
				if r := recover(); r != nil {
					connLog.Error("handler panicked", zap.Any("recover", r))
				}
				connection.Close()
			}()

			handler := s.newHandler()
			handler.Run(ctx, connection, s.appCtx)
		}()
	}
}
