package netsvc

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// UDPHandler processes one datagram from addr. The original emulator's
// udp/server.rs never actually dispatches per-session state (the
// dispatch logic is commented out in the source); we keep that as an
// honest skeleton here too — Handle only logs and returns — while giving
// it a real per-peer registry (SessionRegistry) an operator can inspect.
type UDPHandler interface {
	Description() string
	Handle(ctx context.Context, addr *net.UDPAddr, data []byte)
}

// UDPServer binds one UDP socket and feeds every datagram to handler,
// recording the sender in registry so it shows up in the operator-facing
// session listing.
type UDPServer struct {
	log         *zap.Logger
	bindAddress string
	handler     UDPHandler
	registry    *SessionRegistry
}

// NewUDPServer builds a server bound to bindAddress.
func NewUDPServer(log *zap.Logger, bindAddress string, handler UDPHandler, registry *SessionRegistry) *UDPServer {
	return &UDPServer{log: log, bindAddress: bindAddress, handler: handler, registry: registry}
}

// Run binds and loops on ReadFromUDP until ctx is cancelled.
func (s *UDPServer) Run(ctx context.Context) error {
	s.log.Info("starting server", zap.String("service", s.handler.Description()))

	addr, err := net.ResolveUDPAddr("udp", s.bindAddress)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.bindAddress, err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("error binding to %s: %w", s.bindAddress, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	s.log.Info("now waiting for connections", zap.String("service", s.handler.Description()), zap.String("address", s.bindAddress))

	buf := make([]byte, 65535)
	for {
		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fmt.Errorf("error reading from %s: %w", s.bindAddress, err)
			}
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		if s.registry != nil {
			s.registry.Touch(peer)
		}
		s.handler.Handle(ctx, peer, data)
	}
}
