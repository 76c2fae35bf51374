package core

import "github.com/BradMoyetones/chat-backend-go/internal/domain"

// ClientSession binds one connection to its transport endpoint and,
// after identify, to a user. This is what rooms store and fan out to.
type ClientSession interface {
	ID() ConnID
	// User returns the bound identity, if the identify step happened.
	User() (domain.UserID, bool)
	// BindUser binds the identity once; rebinding to a different user
	// fails with ErrAlreadyBound.
	BindUser(domain.UserID) error
	Signal() SignalConnection
}
