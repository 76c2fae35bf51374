package app

import (
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence is the single source of truth for "is user X reachable" and
// which connection reaches them. One active connection per user; a
// second identify overwrites the mapping without closing the old
// connection.
type Presence struct {
	mu     sync.Mutex
	byUser map[domain.UserID]core.ConnID
}

func NewPresence() *Presence {
	return &Presence{byUser: make(map[domain.UserID]core.ConnID)}
}

// SetOnline unconditionally overwrites any previous mapping and reports
// the evicted connection, if any.
func (p *Presence) SetOnline(uid domain.UserID, cid core.ConnID) (prev core.ConnID, replaced bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, replaced = p.byUser[uid]
	p.byUser[uid] = cid
	log.Info().Str("module", "app.presence").Int64("user", int64(uid)).Str("conn", string(cid)).Msg("online")
	return prev, replaced && prev != cid
}

// SetOffline removes the mapping if present. Idempotent.
func (p *Presence) SetOffline(uid domain.UserID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byUser[uid]; !ok {
		return false
	}
	delete(p.byUser, uid)
	log.Info().Str("module", "app.presence").Int64("user", int64(uid)).Msg("offline")
	return true
}

// SetOfflineConn removes the mapping only while cid is still the
// registered connection. Disconnect handlers use it so a stale
// disconnect cannot clobber a newer identify.
func (p *Presence) SetOfflineConn(uid domain.UserID, cid core.ConnID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.byUser[uid]; !ok || cur != cid {
		return false
	}
	delete(p.byUser, uid)
	log.Info().Str("module", "app.presence").Int64("user", int64(uid)).Str("conn", string(cid)).Msg("offline")
	return true
}

// Resolve returns the connection reaching uid. Absence means "not
// reachable now", never an error.
func (p *Presence) Resolve(uid domain.UserID) (core.ConnID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cid, ok := p.byUser[uid]
	return cid, ok
}

func (p *Presence) IsOnline(uid domain.UserID) bool {
	_, ok := p.Resolve(uid)
	return ok
}

// FilterOnline returns the subset of uids currently registered,
// preserving input order.
func (p *Presence) FilterOnline(uids []domain.UserID) []domain.UserID {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.UserID, 0, len(uids))
	for _, uid := range uids {
		if _, ok := p.byUser[uid]; ok {
			out = append(out, uid)
		}
	}
	return out
}
