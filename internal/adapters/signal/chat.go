package signal

import (
	"context"
	"encoding/json"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) handleMessageNew(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		ConversationID domain.ConversationID `json:"conversationId"`
		Content        string                `json:"content"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.ConversationID == 0 {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	msg, err := ctl.Orch.SendMessage(ctx, cid, p.ConversationID, p.Content)
	if err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, msg, nil)
}

func (ctl *Controller) handleMessageRead(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		MessageIDs []domain.MessageID `json:"messageIds"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || len(p.MessageIDs) == 0 {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	if err := ctl.Orch.MarkMessagesRead(ctx, cid, p.MessageIDs); err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, map[string]any{"success": true}, nil)
}

func (ctl *Controller) handleTyping(cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		ConversationID domain.ConversationID `json:"conversationId"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.ConversationID == 0 {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	sess, ok := ctl.Orch.Sessions.Get(cid)
	if !ok {
		return
	}
	if uid, bound := sess.User(); bound && ctl.TypingLimiter != nil && !ctl.TypingLimiter.Allow(uid) {
		log.Debug().Str("module", "signal").Int64("user", int64(uid)).Msg("typing rate limited")
		return
	}
	if err := ctl.Orch.Typing(cid, p.ConversationID, env.Type == "stopTyping"); err != nil {
		ctl.respond(c, env.ID, nil, err)
	}
}
