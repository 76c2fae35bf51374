package core

import "errors"

var (
	// ErrNotAuthenticated is returned for identity-scoped operations
	// on a connection that never identified.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound covers both missing and foreign resources, so callers
	// cannot probe which ids exist under other identities.
	ErrNotFound = errors.New("not found")
	// ErrIncompatible means the routing engine rejected the requested
	// consumption capabilities.
	ErrIncompatible = errors.New("incompatible capabilities")
	// ErrAlreadyBound means a connection tried to identify as a second user.
	ErrAlreadyBound = errors.New("connection already identified")
)
