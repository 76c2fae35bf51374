package domain

import "time"

// Contact-graph event names, unicast to the affected user.
const (
	EventContactRequestReceived = "contact:request:received"
	EventContactRequestAccept   = "contact:request:accept"
	EventContactRequestCancel   = "contact:request:cancel"
	EventContactDeleted         = "contact:deleted"
)

type ContactRequest struct {
	ID         int64     `json:"id"`
	SenderID   UserID    `json:"senderId"`
	ReceiverID UserID    `json:"receiverId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
