package store

import (
	"context"
	"errors"
	"testing"

	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

func TestMemoryGatewayConversations(t *testing.T) {
	g := NewMemoryGateway()
	g.AddParticipant(7, 1)
	g.AddParticipant(7, 2)
	g.AddParticipant(9, 1)

	ids, err := g.ConversationIDsForUser(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("conversations = %v, want two", ids)
	}

	ok, err := g.IsParticipant(context.Background(), 2, 9)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("user 2 is not in conversation 9")
	}
}

func TestMemoryGatewayMessages(t *testing.T) {
	g := NewMemoryGateway()
	g.AddParticipant(7, 1)

	msg, err := g.CreateMessage(context.Background(), 1, 7, "hola")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == 0 || msg.CreatedAt.IsZero() {
		t.Fatalf("message not fully populated: %+v", msg)
	}

	conv, err := g.MarkMessagesRead(context.Background(), 2, []domain.MessageID{msg.ID})
	if err != nil {
		t.Fatal(err)
	}
	if conv != 7 {
		t.Fatalf("conversation = %d, want 7", conv)
	}

	// Marking again stays idempotent.
	if _, err := g.MarkMessagesRead(context.Background(), 2, []domain.MessageID{msg.ID}); err != nil {
		t.Fatal(err)
	}

	// All-unknown ids fail with the shared not-found taxonomy so the
	// client-facing error string collapses to "not found".
	_, err = g.MarkMessagesRead(context.Background(), 2, []domain.MessageID{999})
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("err = %v, want ErrConversationNotFound", err)
	}
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, should wrap the shared not-found error", err)
	}
}

func TestMemoryGatewayContacts(t *testing.T) {
	g := NewMemoryGateway()
	g.AddContact(1, 2)

	for _, uid := range []domain.UserID{1, 2} {
		contacts, err := g.ContactUserIDs(context.Background(), uid)
		if err != nil {
			t.Fatal(err)
		}
		if len(contacts) != 1 {
			t.Fatalf("contacts of %d = %v", uid, contacts)
		}
	}
}
