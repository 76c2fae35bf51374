package core

import (
	"context"

	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

// PersistenceGateway is the external CRUD collaborator. The real-time
// core consults it for membership and triggers the few mutations its
// own events produce; it never owns the schema.
type PersistenceGateway interface {
	// ConversationIDsForUser lists every conversation the user
	// participates in, used to join fan-out rooms at identify time.
	ConversationIDsForUser(ctx context.Context, uid domain.UserID) ([]domain.ConversationID, error)
	// IsParticipant audits membership of a single conversation.
	IsParticipant(ctx context.Context, uid domain.UserID, cid domain.ConversationID) (bool, error)
	// CreateMessage persists a message sent over the realtime channel.
	CreateMessage(ctx context.Context, uid domain.UserID, cid domain.ConversationID, content string) (*domain.Message, error)
	// MarkMessagesRead records read receipts and reports the
	// conversation the messages belong to.
	MarkMessagesRead(ctx context.Context, uid domain.UserID, ids []domain.MessageID) (domain.ConversationID, error)
	// ContactUserIDs lists the user's accepted contacts, used for the
	// friend-list online indicator.
	ContactUserIDs(ctx context.Context, uid domain.UserID) ([]domain.UserID, error)
}
