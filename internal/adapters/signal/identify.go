package signal

import (
	"context"
	"encoding/json"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) handleIdentify(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		UserID domain.UserID `json:"userId"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID == 0 {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}

	if err := ctl.Orch.Identify(ctx, cid, p.UserID); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(cid)).Int64("user", int64(p.UserID)).Msg("identify")
		ctl.respond(c, env.ID, nil, err)
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(cid)).Int64("user", int64(p.UserID)).Msg("identified")
	ctl.respond(c, env.ID, map[string]any{"identified": true}, nil)
}

func (ctl *Controller) handleLogout(cid core.ConnID, c *wsConn, env envelope) {
	if err := ctl.Orch.Logout(cid); err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	ctl.respond(c, env.ID, map[string]any{"loggedOut": true}, nil)
}

func (ctl *Controller) handleContactsOnline(ctx context.Context, cid core.ConnID, c *wsConn, env envelope) {
	online, err := ctl.Orch.ContactsOnline(ctx, cid)
	if err != nil {
		ctl.respond(c, env.ID, nil, err)
		return
	}
	if online == nil {
		online = []domain.UserID{}
	}
	ctl.respond(c, env.ID, map[string]any{"userIds": online}, nil)
}
