package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

var errBadPayload = errors.New("bad payload")

// envelope is the client→server frame: a type, an optional request id
// for ack-style operations, and the operation payload.
type envelope struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ack struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cid core.ConnID, c *wsConn) {
	defer log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("readPump closing")

	pongWait := ctl.Cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("conn", string(cid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(ctx, cid, c, data)
		}
	}
}

func (ctl *Controller) handleFrame(ctx context.Context, cid core.ConnID, c *wsConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "identify":
		ctl.handleIdentify(ctx, cid, c, env)
	case "logout":
		ctl.handleLogout(cid, c, env)
	case "contacts:online":
		ctl.handleContactsOnline(ctx, cid, c, env)
	case "message:new":
		ctl.handleMessageNew(ctx, cid, c, env)
	case "message:read":
		ctl.handleMessageRead(ctx, cid, c, env)
	case "typing", "stopTyping":
		ctl.handleTyping(cid, c, env)
	case "call:user", "call:accept", "call:reject", "call:end":
		ctl.handleCall(cid, c, env)
	case "webrtc:offer", "webrtc:answer", "webrtc:ice-candidate":
		ctl.handleNegotiation(cid, c, env)
	case "sfu:getRouterCapabilities":
		ctl.handleRouterCapabilities(c, env)
	case "sfu:createTransport":
		ctl.handleCreateTransport(ctx, cid, c, env)
	case "sfu:connectTransport":
		ctl.handleConnectTransport(ctx, cid, c, env)
	case "sfu:produce":
		ctl.handleProduce(ctx, cid, c, env)
	case "sfu:consume":
		ctl.handleConsume(ctx, cid, c, env)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// respond answers an ack-style request; err beats data. Fire-and-forget
// events carry no id and only surface errors.
func (ctl *Controller) respond(c *wsConn, reqID string, data any, err error) {
	if reqID == "" {
		if err != nil {
			ctl.sendJSON(c, map[string]any{"type": "error", "error": errMessage(err)})
		}
		return
	}
	out := ack{Type: "ack", ID: reqID}
	if err != nil {
		out.Error = errMessage(err)
	} else {
		out.Data = data
	}
	ctl.sendJSON(c, out)
}

// errMessage collapses the internal taxonomy to caller-facing strings.
// Missing and foreign resources share the same message on purpose.
func errMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		return "not authenticated"
	case errors.Is(err, core.ErrNotFound):
		return "not found"
	case errors.Is(err, core.ErrIncompatible):
		return "incompatible capabilities"
	case errors.Is(err, core.ErrAlreadyBound):
		return "connection already identified"
	default:
		return err.Error()
	}
}
