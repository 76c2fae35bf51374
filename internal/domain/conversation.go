package domain

import (
	"fmt"
	"time"
)

type (
	ConversationID int64
	MessageID      int64
)

// RoomID names a fan-out room. Conversation rooms are derived from the
// conversation id; call rooms are caller-supplied strings.
type RoomID string

func ConversationRoom(id ConversationID) RoomID {
	return RoomID(fmt.Sprintf("conversation:%d", id))
}

type Message struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
	SenderID       UserID         `json:"senderId"`
	Content        string         `json:"content"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// MessageRead is the read-receipt fan-out payload.
type MessageRead struct {
	MessageIDs     []MessageID    `json:"messageIds"`
	UserID         UserID         `json:"userId"`
	ConversationID ConversationID `json:"conversationId"`
}

// TypingNotice is broadcast to a conversation room while a member types.
type TypingNotice struct {
	ConversationID ConversationID `json:"conversationId"`
	UserID         UserID         `json:"userId"`
}
