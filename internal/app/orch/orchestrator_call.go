package orch

import (
	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Call lifecycle and legacy p2p negotiation events. The relay keeps no
// call state and enforces no transitions: any event may be sent at any
// time, and an offline target drops the event with nothing surfaced to
// the caller.
const (
	EventCallIncoming = "call:incoming"
	EventCallAccepted = "call:accepted"
	EventCallRejected = "call:rejected"
	EventCallEnded    = "call:ended"

	EventWebRTCOffer     = "webrtc:offer"
	EventWebRTCAnswer    = "webrtc:answer"
	EventWebRTCCandidate = "webrtc:ice-candidate"
)

// RelayCall resolves the target through presence and unicasts the
// event with the sender's identity attached.
func (o *Orchestrator) RelayCall(cid core.ConnID, event string, target domain.UserID, payload any) (app.Delivery, error) {
	_, uid, err := o.identified(cid)
	if err != nil {
		return app.Dropped, err
	}
	delivery := o.Dispatch.UnicastToUser(target, event, payload)
	if delivery == app.Dropped {
		log.Debug().Str("module", "orch").Str("event", event).Int64("from", int64(uid)).Int64("to", int64(target)).Msg("call event dropped")
	}
	return delivery, nil
}
