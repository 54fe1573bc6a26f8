package handler

import (
	"context"

	"frpg2-server/internal/appctx"
	"frpg2-server/internal/netsvc"

	"go.uber.org/zap"
)

// GameHandler is a deliberate skeleton: service/game.rs in the original
// emulator is unimplemented!() outright, and spec.md's Non-goals exclude
// game business logic. We keep the handler registered with the server
// harness — so the game port accepts and logs connections like the real
// service would — rather than leaving the port entirely unbound.
type GameHandler struct{}

// Description names this handler for server-startup log lines.
func (h *GameHandler) Description() string { return "game" }

// Run logs the connection and then waits until the connection ends; no
// game protocol is implemented.
func (h *GameHandler) Run(ctx context.Context, conn *netsvc.Connection, appCtx appctx.Context) {
	zap.L().Named("game").Warn("game connection accepted; game protocol is not implemented")
	<-conn.Done()
}
