package app

import (
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/rs/zerolog/log"
)

// SessionRegistry tracks every live connection, identified or not.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[core.ConnID]core.ClientSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[core.ConnID]core.ClientSession)}
}

func (r *SessionRegistry) Add(sess core.ClientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = sess
	log.Info().Str("module", "app.sessions").Str("conn", string(sess.ID())).Msg("session added")
}

func (r *SessionRegistry) Remove(cid core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, cid)
	log.Info().Str("module", "app.sessions").Str("conn", string(cid)).Msg("session removed")
}

func (r *SessionRegistry) Get(cid core.ConnID) (core.ClientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[cid]
	return s, ok
}

func (r *SessionRegistry) Snapshot() []core.ClientSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ClientSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
