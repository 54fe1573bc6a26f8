package netsvc

import (
	"net"
	"sync"
	"time"
)

// Session is a snapshot of one UDP peer's activity, as shown by the
// sessions CLI subcommand.
type Session struct {
	Addr     string
	LastSeen time.Time
	Packets  uint64
}

// SessionRegistry tracks UDP peers by address. The original emulator's
// ConnectionDb/ConnectionState (dks3_server/src/context.rs) sketch the
// same idea — demux game-channel state by a UDP peer key — but were left
// as an unfinished, unwired scaffold. This is that idea carried through
// to something the UDP server actually calls on every datagram.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionRegistry builds an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Touch records a datagram from addr, creating the session entry on
// first sight.
func (r *SessionRegistry) Touch(addr *net.UDPAddr) {
	key := addr.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		s = &Session{Addr: key}
		r.sessions[key] = s
	}
	s.LastSeen = time.Now()
	s.Packets++
}

// Snapshot returns a copy of every tracked session, safe to render
// without holding the registry's lock.
func (r *SessionRegistry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}
