package core

// Frame is one encoded event on the wire.
type Frame []byte

// ConnID identifies one live connection. Owned by the transport layer;
// the rest of the system only references it.
type ConnID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
