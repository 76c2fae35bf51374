package orch

import (
	"context"
	"fmt"

	"github.com/BradMoyetones/chat-backend-go/internal/app"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

// SendMessage persists a message arriving over the realtime channel and
// fans it out to the conversation room, the sender's connection
// included.
func (o *Orchestrator) SendMessage(ctx context.Context, cid core.ConnID, conv domain.ConversationID, content string) (*domain.Message, error) {
	_, uid, err := o.identified(cid)
	if err != nil {
		return nil, err
	}
	ok, err := o.Gateway.IsParticipant(ctx, uid, conv)
	if err != nil {
		return nil, fmt.Errorf("participant audit: %w", err)
	}
	if !ok {
		return nil, core.ErrNotFound
	}
	msg, err := o.Gateway.CreateMessage(ctx, uid, conv, content)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	o.Dispatch.BroadcastToRoom(domain.ConversationRoom(conv), "message:received", msg)
	return msg, nil
}

// MessageCreated fans out a message the external CRUD layer already
// persisted. The notify path is not ordered against reads of the
// persisted row.
func (o *Orchestrator) MessageCreated(msg *domain.Message) {
	o.Dispatch.BroadcastToRoom(domain.ConversationRoom(msg.ConversationID), "message:received", msg)
}

// MarkMessagesRead records the receipts and broadcasts them to the
// conversation room.
func (o *Orchestrator) MarkMessagesRead(ctx context.Context, cid core.ConnID, ids []domain.MessageID) error {
	_, uid, err := o.identified(cid)
	if err != nil {
		return err
	}
	conv, err := o.Gateway.MarkMessagesRead(ctx, uid, ids)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	o.MessagesRead(&domain.MessageRead{MessageIDs: ids, UserID: uid, ConversationID: conv})
	return nil
}

// MessagesRead fans out receipts the CRUD layer recorded.
func (o *Orchestrator) MessagesRead(read *domain.MessageRead) {
	o.Dispatch.BroadcastToRoom(domain.ConversationRoom(read.ConversationID), "message:read", read)
}

// Typing broadcasts a typing indicator to the conversation room.
func (o *Orchestrator) Typing(cid core.ConnID, conv domain.ConversationID, stopped bool) error {
	_, uid, err := o.identified(cid)
	if err != nil {
		return err
	}
	event := "typing"
	if stopped {
		event = "stopTyping"
	}
	o.Dispatch.BroadcastToRoom(domain.ConversationRoom(conv), event, domain.TypingNotice{
		ConversationID: conv,
		UserID:         uid,
	})
	return nil
}

// ContactEvent unicasts a contact-graph change to the affected user.
// Offline targets are dropped silently.
func (o *Orchestrator) ContactEvent(event string, target domain.UserID, payload any) app.Delivery {
	return o.Dispatch.UnicastToUser(target, event, payload)
}

// ContactsOnline returns the subset of the caller's contacts that are
// currently reachable.
func (o *Orchestrator) ContactsOnline(ctx context.Context, cid core.ConnID) ([]domain.UserID, error) {
	_, uid, err := o.identified(cid)
	if err != nil {
		return nil, err
	}
	contacts, err := o.Gateway.ContactUserIDs(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("contact lookup: %w", err)
	}
	return o.Presence.FilterOnline(contacts), nil
}
