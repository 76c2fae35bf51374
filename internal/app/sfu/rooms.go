// Package sfu owns per-room, per-user media peer state on top of the
// shared routing engine.
package sfu

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager tracks peers per room and brokers transport, producer and
// consumer lifecycle against the routing engine. Transport ids are
// engine-issued and globally unique, so lookups scan the user's peers
// across all rooms; a user can only touch transports it created.
type RoomManager struct {
	router core.MediaRouter

	mu    sync.RWMutex
	rooms map[domain.RoomID]map[domain.UserID]*Peer
}

func NewRoomManager(router core.MediaRouter) *RoomManager {
	return &RoomManager{
		router: router,
		rooms:  make(map[domain.RoomID]map[domain.UserID]*Peer),
	}
}

func (m *RoomManager) Capabilities() json.RawMessage {
	return m.router.Capabilities()
}

func (m *RoomManager) getOrCreatePeer(uid domain.UserID, roomID domain.RoomID) *Peer {
	m.mu.Lock()
	defer m.mu.Unlock()
	peers, ok := m.rooms[roomID]
	if !ok {
		peers = make(map[domain.UserID]*Peer)
		m.rooms[roomID] = peers
	}
	peer, ok := peers[uid]
	if !ok {
		peer = newPeer(uid)
		peers[uid] = peer
		log.Info().Str("module", "sfu").Int64("user", int64(uid)).Str("room", string(roomID)).Msg("peer created")
	}
	return peer
}

// findPeerTransport locates the user's transport with the given id in
// any room, reporting the room that owns it.
func (m *RoomManager) findPeerTransport(uid domain.UserID, transportID string) (*Peer, core.MediaTransport, domain.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for roomID, peers := range m.rooms {
		peer, ok := peers[uid]
		if !ok {
			continue
		}
		if t, ok := peer.transport(transportID); ok {
			return peer, t, roomID, true
		}
	}
	return nil, nil, "", false
}

// RoomOfUser reports the room the user has a peer in.
func (m *RoomManager) RoomOfUser(uid domain.UserID) (domain.RoomID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for roomID, peers := range m.rooms {
		if _, ok := peers[uid]; ok {
			return roomID, true
		}
	}
	return "", false
}

// CreateTransport allocates a bidirectional transport for the user's
// peer in roomID, creating the peer on first use.
func (m *RoomManager) CreateTransport(ctx context.Context, uid domain.UserID, roomID domain.RoomID) (core.TransportParams, error) {
	peer := m.getOrCreatePeer(uid, roomID)
	transport, err := m.router.CreateTransport(ctx)
	if err != nil {
		return core.TransportParams{}, fmt.Errorf("create transport: %w", err)
	}
	peer.addTransport(transport)
	log.Info().Str("module", "sfu").Int64("user", int64(uid)).Str("room", string(roomID)).Str("transport", transport.ID()).Msg("transport created")
	return transport.Params(), nil
}

// ConnectTransport finishes DTLS negotiation on a transport the user
// owns. Unknown ids fail with the shared not-found error, foreign
// transports included.
func (m *RoomManager) ConnectTransport(ctx context.Context, uid domain.UserID, transportID string, dtlsParameters json.RawMessage) error {
	_, transport, _, ok := m.findPeerTransport(uid, transportID)
	if !ok {
		return core.ErrNotFound
	}
	if err := transport.Connect(ctx, dtlsParameters); err != nil {
		return fmt.Errorf("connect transport %s: %w", transportID, err)
	}
	return nil
}

// Produce registers an outgoing media stream on the user's transport
// and reports the room the transport belongs to, so callers can notify
// exactly the peers sharing that room.
func (m *RoomManager) Produce(ctx context.Context, uid domain.UserID, transportID string, kind core.MediaKind, rtpParameters json.RawMessage) (string, domain.RoomID, error) {
	peer, transport, roomID, ok := m.findPeerTransport(uid, transportID)
	if !ok {
		return "", "", core.ErrNotFound
	}
	producer, err := transport.Produce(ctx, kind, rtpParameters)
	if err != nil {
		return "", "", fmt.Errorf("produce on transport %s: %w", transportID, err)
	}
	peer.addProducer(producer)
	log.Info().Str("module", "sfu").Int64("user", int64(uid)).Str("producer", producer.ID()).Str("room", string(roomID)).Str("kind", string(kind)).Msg("producer created")
	return producer.ID(), roomID, nil
}

// Consume creates a consumer for the target producer on the user's
// transport. The engine's capability check gates creation: nothing is
// allocated when the capabilities are incompatible.
func (m *RoomManager) Consume(ctx context.Context, uid domain.UserID, transportID, producerID string, rtpCapabilities json.RawMessage) (core.ConsumerParams, error) {
	if !m.router.CanConsume(producerID, rtpCapabilities) {
		return core.ConsumerParams{}, core.ErrIncompatible
	}
	peer, transport, _, ok := m.findPeerTransport(uid, transportID)
	if !ok {
		return core.ConsumerParams{}, core.ErrNotFound
	}
	consumer, err := transport.Consume(ctx, producerID, rtpCapabilities)
	if err != nil {
		return core.ConsumerParams{}, fmt.Errorf("consume producer %s: %w", producerID, err)
	}
	peer.addConsumer(consumer)
	return core.ConsumerParams{
		ID:            consumer.ID(),
		ProducerID:    consumer.ProducerID(),
		Kind:          consumer.Kind(),
		RtpParameters: consumer.RtpParameters(),
	}, nil
}

// Producer looks a producer up across all rooms.
func (m *RoomManager) Producer(producerID string) (core.MediaProducer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, peers := range m.rooms {
		for _, peer := range peers {
			if pr, ok := peer.producer(producerID); ok {
				return pr, true
			}
		}
	}
	return nil, false
}

// ClosePeer releases every resource the user's peer holds in roomID
// and forgets the peer. Empty rooms are dropped.
func (m *RoomManager) ClosePeer(uid domain.UserID, roomID domain.RoomID) {
	m.mu.Lock()
	peers, ok := m.rooms[roomID]
	var peer *Peer
	if ok {
		peer = peers[uid]
		delete(peers, uid)
		if len(peers) == 0 {
			delete(m.rooms, roomID)
		}
	}
	m.mu.Unlock()
	if peer == nil {
		return
	}
	peer.close()
	log.Info().Str("module", "sfu").Int64("user", int64(uid)).Str("room", string(roomID)).Msg("peer closed")
}

// CloseUser tears down the user's peers in every room, reporting the
// rooms that were affected. The disconnect path calls it so engine
// handles never outlive the connection that created them.
func (m *RoomManager) CloseUser(uid domain.UserID) []domain.RoomID {
	m.mu.RLock()
	var affected []domain.RoomID
	for roomID, peers := range m.rooms {
		if _, ok := peers[uid]; ok {
			affected = append(affected, roomID)
		}
	}
	m.mu.RUnlock()
	for _, roomID := range affected {
		m.ClosePeer(uid, roomID)
	}
	return affected
}
