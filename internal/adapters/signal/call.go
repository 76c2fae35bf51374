package signal

import (
	"encoding/json"

	"github.com/BradMoyetones/chat-backend-go/internal/app/orch"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
	"github.com/pion/webrtc/v4"
)

// fromUser resolves the caller's identity for relayed payloads.
func (ctl *Controller) fromUser(cid core.ConnID) (domain.UserID, bool) {
	sess, ok := ctl.Orch.Sessions.Get(cid)
	if !ok {
		return 0, false
	}
	return sess.User()
}

// handleCall relays call lifecycle events. No legality checks: any
// event may arrive at any time, and an offline target means the event
// vanishes without feedback.
func (ctl *Controller) handleCall(cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		TargetUserID domain.UserID   `json:"targetUserId"`
		To           domain.UserID   `json:"to"`
		From         json.RawMessage `json:"from,omitempty"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	target := p.TargetUserID
	if target == 0 {
		target = p.To
	}
	uid, _ := ctl.fromUser(cid)

	var event string
	var payload any
	switch env.Type {
	case "call:user":
		event = orch.EventCallIncoming
		payload = map[string]any{"from": p.From}
	case "call:accept":
		event = orch.EventCallAccepted
		payload = map[string]any{"from": uid}
	case "call:reject":
		event = orch.EventCallRejected
		payload = nil
	case "call:end":
		event = orch.EventCallEnded
		payload = map[string]any{"from": uid}
	}

	if _, err := ctl.Orch.RelayCall(cid, event, target, payload); err != nil {
		ctl.respond(c, env.ID, nil, err)
	}
}

// handleNegotiation relays the legacy direct peer-to-peer negotiation
// events, with the sender's identity attached.
func (ctl *Controller) handleNegotiation(cid core.ConnID, c *wsConn, env envelope) {
	var p struct {
		TargetUserID domain.UserID              `json:"targetUserId"`
		Offer        *webrtc.SessionDescription `json:"offer,omitempty"`
		Answer       *webrtc.SessionDescription `json:"answer,omitempty"`
		Candidate    *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.TargetUserID == 0 {
		ctl.respond(c, env.ID, nil, errBadPayload)
		return
	}
	uid, _ := ctl.fromUser(cid)

	var payload any
	switch env.Type {
	case orch.EventWebRTCOffer:
		payload = map[string]any{"from": uid, "offer": p.Offer}
	case orch.EventWebRTCAnswer:
		payload = map[string]any{"from": uid, "answer": p.Answer}
	case orch.EventWebRTCCandidate:
		payload = map[string]any{"from": uid, "candidate": p.Candidate}
	}

	if _, err := ctl.Orch.RelayCall(cid, env.Type, p.TargetUserID, payload); err != nil {
		ctl.respond(c, env.ID, nil, err)
	}
}
