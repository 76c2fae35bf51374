package orch

import (
	"context"
	"encoding/json"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// NewProducerNotice tells the other members of a room that a stream is
// available to consume.
type NewProducerNotice struct {
	ProducerID string         `json:"producerId"`
	Kind       core.MediaKind `json:"kind"`
	UserID     domain.UserID  `json:"userId"`
}

func (o *Orchestrator) RouterCapabilities() json.RawMessage {
	return o.Media.Capabilities()
}

// CreateTransport allocates a transport for the caller's peer in the
// room and joins the connection to the room, so later newProducer
// notices reach it.
func (o *Orchestrator) CreateTransport(ctx context.Context, cid core.ConnID, roomID domain.RoomID) (core.TransportParams, error) {
	sess, uid, err := o.identified(cid)
	if err != nil {
		return core.TransportParams{}, err
	}
	params, err := o.Media.CreateTransport(ctx, uid, roomID)
	if err != nil {
		return core.TransportParams{}, err
	}
	o.Dispatch.JoinRoom(roomID, sess)
	return params, nil
}

func (o *Orchestrator) ConnectTransport(ctx context.Context, cid core.ConnID, transportID string, dtlsParameters json.RawMessage) error {
	_, uid, err := o.identified(cid)
	if err != nil {
		return err
	}
	return o.Media.ConnectTransport(ctx, uid, transportID, dtlsParameters)
}

// Produce creates the producer and notifies every other connection in
// the room so peers can choose to consume it.
func (o *Orchestrator) Produce(ctx context.Context, cid core.ConnID, transportID string, kind core.MediaKind, rtpParameters json.RawMessage) (string, error) {
	_, uid, err := o.identified(cid)
	if err != nil {
		return "", err
	}
	producerID, roomID, err := o.Media.Produce(ctx, uid, transportID, kind, rtpParameters)
	if err != nil {
		return "", err
	}
	if roomID != "" {
		o.Dispatch.BroadcastToRoomExcept(roomID, cid, "newProducer", NewProducerNotice{
			ProducerID: producerID,
			Kind:       kind,
			UserID:     uid,
		})
	}
	return producerID, nil
}

func (o *Orchestrator) Consume(ctx context.Context, cid core.ConnID, transportID, producerID string, rtpCapabilities json.RawMessage) (core.ConsumerParams, error) {
	_, uid, err := o.identified(cid)
	if err != nil {
		return core.ConsumerParams{}, err
	}
	return o.Media.Consume(ctx, uid, transportID, producerID, rtpCapabilities)
}

// closeMedia releases the user's peers in every room on disconnect so
// engine handles do not leak.
func (o *Orchestrator) closeMedia(uid domain.UserID) {
	if o.Media == nil {
		return
	}
	if rooms := o.Media.CloseUser(uid); len(rooms) > 0 {
		log.Info().Str("module", "orch").Int64("user", int64(uid)).Int("rooms", len(rooms)).Msg("media peers closed")
	}
}
