// Package signal is the WebSocket adapter: it owns connections, decodes
// client frames, and hands events to the orchestrator.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/app/orch"
	"github.com/BradMoyetones/chat-backend-go/internal/config"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch          *orch.Orchestrator
	Cfg           *config.Config
	TypingLimiter *app.RateLimiter
}

func NewController(o *orch.Orchestrator, cfg *config.Config, limiter *app.RateLimiter) *Controller {
	return &Controller{Orch: o, Cfg: cfg, TypingLimiter: limiter}
}

// wsConn implements core.SignalConnection over one gorilla socket with
// a buffered send channel. A full buffer drops the frame.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until it
// drops. Disconnect cleanup (presence, rooms, media peers) happens when
// the read pump exits.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	cid := core.ConnID(uuid.NewString())
	sess := core.NewClientSession(cid, conn)
	ctl.Orch.Connect(sess)
	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, cid, conn)
		ctl.Orch.Disconnect(cid)
		conn.Close()
	}()
}
