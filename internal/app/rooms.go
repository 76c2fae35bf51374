package app

import (
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// PublishResult reports what a fan-out actually delivered.
type PublishResult struct {
	SentTo  int
	Dropped []core.ConnID
}

// Room is a threadsafe membership set for one conversation or call.
// It never closes adapter-owned connections.
type Room struct {
	id      domain.RoomID
	mu      sync.RWMutex
	members map[core.ConnID]core.ClientSession
}

func newRoom(id domain.RoomID) *Room {
	return &Room{id: id, members: make(map[core.ConnID]core.ClientSession)}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) Add(sess core.ClientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sess.ID()] = sess
}

func (r *Room) Remove(cid core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, cid)
}

func (r *Room) Has(cid core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[cid]
	return ok
}

// Broadcast sends the frame to every member, the sender's own
// connection included. except skips one connection when non-empty.
func (r *Room) Broadcast(frame core.Frame, except core.ConnID) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for cid, m := range r.members {
		if except != "" && cid == except {
			continue
		}
		if err := m.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, cid)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "app.room").Str("room", string(r.id)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast")
	return res
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomManager owns the fan-out rooms.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*Room)}
}

func (m *RoomManager) GetOrCreate(id domain.RoomID) *Room {
	m.mu.RLock()
	room, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[id]; ok {
		return room
	}
	room = newRoom(id)
	m.rooms[id] = room
	return room
}

func (m *RoomManager) Get(id domain.RoomID) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManager) List() []RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RoomInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: r.MemberCount()})
	}
	return out
}

// RemoveEverywhere drops the connection from every room, returning the
// rooms it was a member of. Rooms emptied by the removal are deleted,
// so conversation and call churn does not accumulate dead entries.
func (m *RoomManager) RemoveEverywhere(cid core.ConnID) []domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	var left []domain.RoomID
	for id, room := range m.rooms {
		if room.Has(cid) {
			room.Remove(cid)
			left = append(left, id)
			if room.MemberCount() == 0 {
				delete(m.rooms, id)
			}
		}
	}
	return left
}

func (m *RoomManager) StopRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}
