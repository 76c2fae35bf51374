package signal

import (
	"context"
	"encoding/json"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

// SFU negotiation: request/response over the same channel. Every
// handler answers with an ack carrying either data or an error string;
// failures never close the connection.

func (ctl *Controller) handleRouterCapabilities(c *wsConn, env envelope) {
	ctl.respond(c, env.ID, json.RawMessage(ctl.Orch.RouterCapabilities()), nil)
}

func (ctl *Controller) handleCreateTransport(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.RoomID == "" {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	params, err := ctl.Orch.CreateTransport(ctx, cid, p.RoomID)
	if err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, params, nil)
}

func (ctl *Controller) handleConnectTransport(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		TransportID    string          `json:"transportId"`
		DtlsParameters json.RawMessage `json:"dtlsParameters"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.TransportID == "" {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	if err := ctl.Orch.ConnectTransport(ctx, cid, p.TransportID, p.DtlsParameters); err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, map[string]any{"connected": true}, nil)
}

func (ctl *Controller) handleProduce(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		TransportID   string          `json:"transportId"`
		Kind          core.MediaKind  `json:"kind"`
		RtpParameters json.RawMessage `json:"rtpParameters"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.TransportID == "" {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	producerID, err := ctl.Orch.Produce(ctx, cid, p.TransportID, p.Kind, p.RtpParameters)
	if err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, map[string]any{"id": producerID}, nil)
}

func (ctl *Controller) handleConsume(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		ProducerID      string          `json:"producerId"`
		TransportID     string          `json:"transportId"`
		RtpCapabilities json.RawMessage `json:"rtpCapabilities"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.TransportID == "" || p.ProducerID == "" {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	params, err := ctl.Orch.Consume(ctx, cid, p.TransportID, p.ProducerID, p.RtpCapabilities)
	if err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, params, nil)
}
