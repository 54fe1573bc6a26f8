// Package appctx provides the cheap-to-clone handle every connection
// handler receives, wrapping the server's config and shared in-memory
// state behind a mutex — the Go shape of MatchmakingDb
// (dks3_server/src/context.rs), which itself wraps an Arc<RwLock<...>>.
package appctx

import (
	"crypto/rsa"
	"sync"

	"frpg2-server/internal/cipher"
	"frpg2-server/internal/config"
	"frpg2-server/internal/netsvc"
)

// sharedState is the matchmaking state every cloned Context points at.
// It stands in for a future persistent store; spec.md puts the store
// itself out of scope, so this stays in-memory.
type sharedState struct {
	mu       sync.RWMutex
	sessions *netsvc.SessionRegistry
}

// Context is the handle passed to every connection handler. Copying a
// Context by value is cheap and safe — every field is either immutable
// or itself a pointer to shared, mutex-guarded state.
type Context struct {
	cfg    *config.Config
	key    *rsa.PrivateKey
	shared *sharedState
}

// New builds the root Context from a loaded config and its parsed RSA
// key.
func New(cfg *config.Config, key *rsa.PrivateKey) Context {
	return Context{
		cfg: cfg,
		key: key,
		shared: &sharedState{
			sessions: netsvc.NewSessionRegistry(),
		},
	}
}

// Config returns the immutable server configuration.
func (c Context) Config() *config.Config {
	return c.cfg
}

// Sessions returns the shared UDP session registry.
func (c Context) Sessions() *netsvc.SessionRegistry {
	return c.shared.sessions
}

// RSACipherPair builds the {OAEP inbound, X9.31 outbound} pair every
// login and auth connection starts with, mirroring
// create_login_service/create_auth_service's identical cipher wiring.
func (c Context) RSACipherPair() netsvc.CipherPair {
	return netsvc.CipherPair{
		Inbound:  cipher.NewRSAMode(c.key, cipher.RSAPaddingOAEP),
		Outbound: cipher.NewRSAMode(c.key, cipher.RSAPaddingX931),
	}
}
