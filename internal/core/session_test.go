package core

import (
	"errors"
	"testing"
)

type nopConn struct{}

func (nopConn) TrySend(Frame) error { return nil }
func (nopConn) Close()              {}

func TestSessionBindUserOnce(t *testing.T) {
	sess := NewClientSession("c1", nopConn{})

	if _, ok := sess.User(); ok {
		t.Fatal("fresh session should have no bound user")
	}
	if err := sess.BindUser(7); err != nil {
		t.Fatal(err)
	}
	uid, ok := sess.User()
	if !ok || uid != 7 {
		t.Fatalf("User() = %d, %v", uid, ok)
	}

	// Same user again is fine; a different one is not.
	if err := sess.BindUser(7); err != nil {
		t.Fatalf("rebinding the same user should be a no-op, got %v", err)
	}
	if err := sess.BindUser(8); !errors.Is(err, ErrAlreadyBound) {
		t.Fatalf("err = %v, want ErrAlreadyBound", err)
	}
}
