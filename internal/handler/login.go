// Package handler implements the login, auth, and game connection
// handlers: the ordered message exchanges in spec.md §4.5, ported
// directly from service/login.rs, service/auth.rs, and service/game.rs.
package handler

import (
	"context"
	"time"

	"frpg2-server/internal/appctx"
	"frpg2-server/internal/netsvc"
	"frpg2-server/internal/pb/frpg2request"

	"go.uber.org/zap"
)

// postRedirectDelay is the pause the login handler takes after sending
// the redirect, mirroring service/login.rs's sleep(Duration::from_millis(2000))
// before the connection handler returns and the connection is torn down.
const postRedirectDelay = 2 * time.Second

// LoginHandler answers RequestQueryLoginServerInfo with a redirect to the
// auth port. It carries no state across connections — a fresh value is
// built by the server harness for every accepted connection, the Go
// analogue of #[derive(Default)] on LoginConnectionHandler.
type LoginHandler struct {
	globalCounter uint16
	counter       uint32
}

// Description names this handler for server-startup log lines.
func (h *LoginHandler) Description() string { return "login" }

// Run executes the one-shot login exchange.
func (h *LoginHandler) Run(ctx context.Context, conn *netsvc.Connection, appCtx appctx.Context) {
	log := zap.L().Named("login")

	var req frpg2request.RequestQueryLoginServerInfo
	gc, c, err := netsvc.ReadMessage(ctx, conn, &req)
	if err != nil {
		log.Error("failed to read login server info request", zap.Error(err))
		return
	}
	h.globalCounter, h.counter = gc, c

	log.Info("client connected",
		zap.String("steamid", req.SteamID),
		zap.Uint64("version", req.VersionNum))

	cfg := appCtx.Config()
	resp := frpg2request.RequestQueryLoginServerInfoResponse{
		ServerIP: cfg.ServerIP,
		Port:     uint32(cfg.AuthPort),
	}
	netsvc.WriteMessage(ctx, conn, &resp, h.globalCounter, h.counter)

	select {
	case <-time.After(postRedirectDelay):
	case <-ctx.Done():
	}
}
