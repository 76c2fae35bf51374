package store

import (
	"context"
	"sync"
	"time"

	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

// MemoryGateway is the in-process gateway used by tests and DSN-less
// development runs.
type MemoryGateway struct {
	mu           sync.Mutex
	participants map[domain.ConversationID][]domain.UserID
	contacts     map[domain.UserID][]domain.UserID
	messages     map[domain.MessageID]*domain.Message
	reads        map[domain.MessageID]map[domain.UserID]struct{}
	nextID       domain.MessageID
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		participants: make(map[domain.ConversationID][]domain.UserID),
		contacts:     make(map[domain.UserID][]domain.UserID),
		messages:     make(map[domain.MessageID]*domain.Message),
		reads:        make(map[domain.MessageID]map[domain.UserID]struct{}),
		nextID:       1,
	}
}

// AddParticipant seeds conversation membership.
func (g *MemoryGateway) AddParticipant(cid domain.ConversationID, uid domain.UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.participants[cid] = append(g.participants[cid], uid)
}

// AddContact seeds a mutual accepted contact.
func (g *MemoryGateway) AddContact(a, b domain.UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contacts[a] = append(g.contacts[a], b)
	g.contacts[b] = append(g.contacts[b], a)
}

func (g *MemoryGateway) ConversationIDsForUser(_ context.Context, uid domain.UserID) ([]domain.ConversationID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []domain.ConversationID
	for cid, users := range g.participants {
		for _, u := range users {
			if u == uid {
				out = append(out, cid)
				break
			}
		}
	}
	return out, nil
}

func (g *MemoryGateway) IsParticipant(_ context.Context, uid domain.UserID, cid domain.ConversationID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, u := range g.participants[cid] {
		if u == uid {
			return true, nil
		}
	}
	return false, nil
}

func (g *MemoryGateway) CreateMessage(_ context.Context, uid domain.UserID, cid domain.ConversationID, content string) (*domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	msg := &domain.Message{
		ID:             g.nextID,
		ConversationID: cid,
		SenderID:       uid,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	g.nextID++
	g.messages[msg.ID] = msg
	return msg, nil
}

func (g *MemoryGateway) MarkMessagesRead(_ context.Context, uid domain.UserID, ids []domain.MessageID) (domain.ConversationID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var conv domain.ConversationID
	found := false
	for _, id := range ids {
		msg, ok := g.messages[id]
		if !ok {
			continue
		}
		if !found {
			conv = msg.ConversationID
			found = true
		}
		if g.reads[id] == nil {
			g.reads[id] = make(map[domain.UserID]struct{})
		}
		g.reads[id][uid] = struct{}{}
	}
	if !found {
		return 0, ErrConversationNotFound
	}
	return conv, nil
}

func (g *MemoryGateway) ContactUserIDs(_ context.Context, uid domain.UserID) ([]domain.UserID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]domain.UserID, len(g.contacts[uid]))
	copy(out, g.contacts[uid])
	return out, nil
}
