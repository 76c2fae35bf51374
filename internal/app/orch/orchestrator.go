// Package orch coordinates presence, fan-out, call signaling and SFU
// state for every connection event.
package orch

import (
	"context"

	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/app/sfu"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Sessions *app.SessionRegistry
	Presence *app.Presence
	Rooms    *app.RoomManager
	Dispatch *app.Dispatcher
	Media    *sfu.RoomManager
	Gateway  core.PersistenceGateway
}

type presenceNotice struct {
	UserID domain.UserID `json:"userId"`
}

// Connect registers a fresh, not yet identified connection.
func (o *Orchestrator) Connect(sess core.ClientSession) {
	o.Sessions.Add(sess)
}

// Identify binds the user to the connection, registers presence, joins
// the user's conversation rooms, and tells everyone else. A prior
// connection of the same user is evicted from presence but not closed.
func (o *Orchestrator) Identify(ctx context.Context, cid core.ConnID, uid domain.UserID) error {
	sess, ok := o.Sessions.Get(cid)
	if !ok {
		return core.ErrNotFound
	}
	if err := sess.BindUser(uid); err != nil {
		return err
	}
	if prev, replaced := o.Presence.SetOnline(uid, cid); replaced {
		log.Info().Str("module", "orch").Int64("user", int64(uid)).Str("evicted", string(prev)).Msg("presence overwritten")
	}
	// Rooms must be joined before this call returns so later fan-out
	// for the user's conversations reaches this connection.
	if _, err := o.Dispatch.JoinConversationRooms(ctx, sess); err != nil {
		return err
	}
	o.Dispatch.BroadcastAllExcept(uid, "presence:online", presenceNotice{UserID: uid})
	return nil
}

// Disconnect tears the connection down: presence (only if this
// connection still owns the entry), media peers, room membership.
func (o *Orchestrator) Disconnect(cid core.ConnID) {
	sess, ok := o.Sessions.Get(cid)
	if !ok {
		return
	}
	if uid, bound := sess.User(); bound {
		if o.Presence.SetOfflineConn(uid, cid) {
			o.Dispatch.BroadcastAllExcept(uid, "presence:offline", presenceNotice{UserID: uid})
		}
		o.closeMedia(uid)
	}
	o.Dispatch.LeaveAll(cid)
	o.Sessions.Remove(cid)
}

// Logout handles the explicit offline signal; the connection stays up
// and keeps its bound identity.
func (o *Orchestrator) Logout(cid core.ConnID) error {
	sess, ok := o.Sessions.Get(cid)
	if !ok {
		return core.ErrNotFound
	}
	uid, bound := sess.User()
	if !bound {
		return core.ErrNotAuthenticated
	}
	if o.Presence.SetOfflineConn(uid, cid) {
		o.Dispatch.BroadcastAllExcept(uid, "presence:offline", presenceNotice{UserID: uid})
	}
	return nil
}

// RefreshRoomMembership re-runs the conversation-room join for the
// user's current connection. Membership is otherwise computed once at
// identify time, so a user added to a conversation later will not see
// its fan-out until this hook or the next identify.
func (o *Orchestrator) RefreshRoomMembership(ctx context.Context, uid domain.UserID) error {
	cid, ok := o.Presence.Resolve(uid)
	if !ok {
		return nil
	}
	sess, ok := o.Sessions.Get(cid)
	if !ok {
		return nil
	}
	_, err := o.Dispatch.JoinConversationRooms(ctx, sess)
	return err
}

// identified resolves the session and its bound user for
// identity-scoped operations.
func (o *Orchestrator) identified(cid core.ConnID) (core.ClientSession, domain.UserID, error) {
	sess, ok := o.Sessions.Get(cid)
	if !ok {
		return nil, 0, core.ErrNotFound
	}
	uid, bound := sess.User()
	if !bound {
		return nil, 0, core.ErrNotAuthenticated
	}
	return sess, uid, nil
}
