package core

import (
	"sync"

	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

type clientSession struct {
	id   ConnID
	conn SignalConnection

	mu     sync.RWMutex
	userID domain.UserID
	bound  bool
}

func NewClientSession(id ConnID, conn SignalConnection) ClientSession {
	return &clientSession{id: id, conn: conn}
}

func (s *clientSession) ID() ConnID               { return s.id }
func (s *clientSession) Signal() SignalConnection { return s.conn }

func (s *clientSession) User() (domain.UserID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.bound
}

func (s *clientSession) BindUser(uid domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound && s.userID != uid {
		return ErrAlreadyBound
	}
	s.userID = uid
	s.bound = true
	return nil
}
