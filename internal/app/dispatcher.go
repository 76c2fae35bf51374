package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Delivery is the outcome of a unicast: delivered to the registered
// connection, or dropped because the target is not reachable. Dropped
// is not an error.
type Delivery int

const (
	Delivered Delivery = iota
	Dropped
)

// Envelope is the server→client wire format.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Encode marshals an event into a frame.
func Encode(event string, payload any) (core.Frame, error) {
	b, err := json.Marshal(Envelope{Type: event, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return core.Frame(b), nil
}

// Dispatcher delivers events to the right connections: room broadcast,
// presence-resolved unicast, or all-connections notices.
type Dispatcher struct {
	Sessions *SessionRegistry
	Presence *Presence
	Rooms    *RoomManager
	Gateway  core.PersistenceGateway
}

func NewDispatcher(sessions *SessionRegistry, presence *Presence, rooms *RoomManager, gateway core.PersistenceGateway) *Dispatcher {
	return &Dispatcher{Sessions: sessions, Presence: presence, Rooms: rooms, Gateway: gateway}
}

// JoinConversationRooms joins the session to every conversation room
// the bound user participates in. It completes before returning, so
// identify-then-join happens-before any later fan-out to this
// connection. Membership is computed once here and not revalidated on
// later participant changes; RefreshRoomMembership re-runs it.
func (d *Dispatcher) JoinConversationRooms(ctx context.Context, sess core.ClientSession) ([]domain.RoomID, error) {
	uid, ok := sess.User()
	if !ok {
		return nil, core.ErrNotAuthenticated
	}
	convs, err := d.Gateway.ConversationIDsForUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("conversation lookup for user %d: %w", uid, err)
	}
	joined := make([]domain.RoomID, 0, len(convs))
	for _, cid := range convs {
		roomID := domain.ConversationRoom(cid)
		d.Rooms.GetOrCreate(roomID).Add(sess)
		joined = append(joined, roomID)
	}
	log.Info().Str("module", "app.dispatch").Int64("user", int64(uid)).Int("rooms", len(joined)).Msg("joined conversation rooms")
	return joined, nil
}

func (d *Dispatcher) JoinRoom(roomID domain.RoomID, sess core.ClientSession) {
	d.Rooms.GetOrCreate(roomID).Add(sess)
}

func (d *Dispatcher) LeaveAll(cid core.ConnID) []domain.RoomID {
	return d.Rooms.RemoveEverywhere(cid)
}

// BroadcastToRoom delivers to every connection joined to the room,
// including the sender's own.
func (d *Dispatcher) BroadcastToRoom(roomID domain.RoomID, event string, payload any) PublishResult {
	return d.broadcastRoom(roomID, event, payload, "")
}

// BroadcastToRoomExcept skips one connection, used for notices that
// must reach everyone but the originator.
func (d *Dispatcher) BroadcastToRoomExcept(roomID domain.RoomID, except core.ConnID, event string, payload any) PublishResult {
	return d.broadcastRoom(roomID, event, payload, except)
}

func (d *Dispatcher) broadcastRoom(roomID domain.RoomID, event string, payload any, except core.ConnID) PublishResult {
	room, ok := d.Rooms.Get(roomID)
	if !ok {
		return PublishResult{}
	}
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("broadcast encode")
		return PublishResult{}
	}
	return room.Broadcast(frame, except)
}

// UnicastToUser resolves presence and delivers to that single
// connection. Offline targets are dropped silently.
func (d *Dispatcher) UnicastToUser(uid domain.UserID, event string, payload any) Delivery {
	cid, ok := d.Presence.Resolve(uid)
	if !ok {
		log.Debug().Str("module", "app.dispatch").Int64("user", int64(uid)).Str("event", event).Msg("unicast dropped, offline")
		return Dropped
	}
	sess, ok := d.Sessions.Get(cid)
	if !ok {
		return Dropped
	}
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("unicast encode")
		return Dropped
	}
	if err := sess.Signal().TrySend(frame); err != nil {
		return Dropped
	}
	return Delivered
}

// BroadcastAllExcept sends a notice to every connection except those
// bound to uid. Presence changes use it so a user is not told about
// their own transitions.
func (d *Dispatcher) BroadcastAllExcept(uid domain.UserID, event string, payload any) {
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Msg("broadcast encode")
		return
	}
	for _, sess := range d.Sessions.Snapshot() {
		if bound, ok := sess.User(); ok && bound == uid {
			continue
		}
		_ = sess.Signal().TrySend(frame)
	}
}
