package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"frpg2-server/internal/appctx"
	"frpg2-server/internal/cipher"
	"frpg2-server/internal/netsvc"
	"frpg2-server/internal/pb/frpg2request"

	"go.uber.org/zap"
)

// syncBlockSize is the zero block written right after the cipher switch,
// matching service/auth.rs's `let init_block = [0u8; 16]`.
const syncBlockSize = 16

// clientNonceSize/serverNonceSize are the two halves of the 16-byte
// client‖server exchange following GetServiceStatusResponse.
const (
	clientNonceSize = 8
	serverNonceSize = 8
)

// steamTicketSize and the SteamID offset within it match the comment in
// service/auth.rs citing SteamKit's (8+ years stale, "rough guide only")
// steam3_appticket layout. Ticket contents beyond the SteamID are never
// interpreted — cryptographic validation of the ticket is out of scope.
const (
	steamTicketSize    = 268
	steamIDOffsetStart = 28
	steamIDOffsetEnd   = 36
)

// AuthHandler runs the handshake: RequestHandshake triggers the RSA→CWC
// cipher switch, then GetServiceStatus, then an 8+8 nonce exchange, then
// the client's Steam session ticket.
type AuthHandler struct {
	globalCounter uint16
	counter       uint32
}

// Description names this handler for server-startup log lines.
func (h *AuthHandler) Description() string { return "auth" }

func (h *AuthHandler) writeData(ctx context.Context, conn *netsvc.Connection, data []byte) {
	netsvc.WriteData(ctx, conn, data, h.globalCounter, h.counter)
}

func (h *AuthHandler) readData(ctx context.Context, conn *netsvc.Connection) ([]byte, error) {
	data, gc, c, err := netsvc.ReadData(ctx, conn)
	if err != nil {
		return nil, err
	}
	h.globalCounter, h.counter = gc, c
	return data, nil
}

func (h *AuthHandler) writeMessage(ctx context.Context, conn *netsvc.Connection, msg netsvc.ProtoMessage) {
	netsvc.WriteMessage(ctx, conn, msg, h.globalCounter, h.counter)
}

func (h *AuthHandler) readMessage(ctx context.Context, conn *netsvc.Connection, out netsvc.ProtoMessageUnmarshaler) error {
	gc, c, err := netsvc.ReadMessage(ctx, conn, out)
	if err != nil {
		return err
	}
	h.globalCounter, h.counter = gc, c
	return nil
}

// Run executes the auth handshake.
func (h *AuthHandler) Run(ctx context.Context, conn *netsvc.Connection, appCtx appctx.Context) {
	log := zap.L().Named("auth")

	var handshake frpg2request.RequestHandshake
	if err := h.readMessage(ctx, conn, &handshake); err != nil {
		log.Error("failed to read handshake", zap.Error(err))
		return
	}

	log.Info("key exchange", zap.String("key", hex.EncodeToString(handshake.AESCWCKey)))

	cwcMode, err := cipher.NewAES128CWCMode(handshake.AESCWCKey)
	if err != nil {
		log.Error("invalid cwc key", zap.Error(err))
		return
	}
	conn.ChangeCipherMode(ctx, cwcMode)

	h.writeData(ctx, conn, make([]byte, syncBlockSize))

	var statusReq frpg2request.GetServiceStatus
	if err := h.readMessage(ctx, conn, &statusReq); err != nil {
		log.Error("failed to read service status request", zap.Error(err))
		return
	}
	log.Info("service status request", zap.String("steamid", statusReq.SteamID))

	statusResp := frpg2request.GetServiceStatusResponse{
		ID:           2,
		SteamID:      "\x00",
		UnknownField: 0,
		VersionNum:   0,
	}
	h.writeMessage(ctx, conn, &statusResp)

	// Client sends 8 bytes; server appends its own 8 random bytes and
	// echoes the 16-byte result back — an apparent key exchange whose
	// purpose the original project never pinned down either.
	clientNonce, err := h.readData(ctx, conn)
	if err != nil {
		log.Error("failed to read client nonce", zap.Error(err))
		return
	}
	if len(clientNonce) < clientNonceSize {
		log.Error("client nonce too short", zap.Int("len", len(clientNonce)))
		return
	}

	serverNonce := make([]byte, serverNonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		log.Error("failed to generate server nonce", zap.Error(err))
		return
	}

	combined := make([]byte, 0, clientNonceSize+serverNonceSize)
	combined = append(combined, clientNonce[:clientNonceSize]...)
	combined = append(combined, serverNonce...)
	log.Debug("nonce exchange", zap.String("combined", hex.EncodeToString(combined)))
	h.writeData(ctx, conn, combined)

	// The client's Steam session ticket. Only the SteamID embedded at a
	// fixed, byte-reversed offset is extracted; no cryptographic
	// validation of the ticket is attempted (out of scope — see
	// service/auth.rs's own comment on the guide it used being stale).
	ticket, err := h.readData(ctx, conn)
	if err != nil {
		log.Error("failed to read steam ticket", zap.Error(err))
		return
	}
	if len(ticket) < steamTicketSize {
		log.Error("steam ticket too short", zap.Int("len", len(ticket)))
		return
	}

	ticketSteamID := make([]byte, steamIDOffsetEnd-steamIDOffsetStart)
	copy(ticketSteamID, ticket[steamIDOffsetStart:steamIDOffsetEnd])
	reverseBytes(ticketSteamID)

	log.Info("steamid consistency check",
		zap.String("status_request_steamid", statusReq.SteamID),
		zap.String("ticket_steamid", hex.EncodeToString(ticketSteamID)))
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
