package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/BradMoyetones/chat-backend-go/internal/adapters/store"
	"github.com/BradMoyetones/chat-backend-go/internal/core"
	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	if f.fail {
		return errors.New("backpressure")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, fr := range f.frames {
		var env Envelope
		if err := json.Unmarshal(fr, &env); err == nil {
			out = append(out, env.Type)
		}
	}
	return out
}

func newTestDispatcher(gw core.PersistenceGateway) *Dispatcher {
	return NewDispatcher(NewSessionRegistry(), NewPresence(), NewRoomManager(), gw)
}

func addSession(t *testing.T, d *Dispatcher, cid core.ConnID, uid domain.UserID) (*fakeConn, core.ClientSession) {
	t.Helper()
	conn := &fakeConn{}
	sess := core.NewClientSession(cid, conn)
	if uid != 0 {
		if err := sess.BindUser(uid); err != nil {
			t.Fatal(err)
		}
		d.Presence.SetOnline(uid, cid)
	}
	d.Sessions.Add(sess)
	return conn, sess
}

func TestBroadcastToRoomIncludesSender(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	connA, sessA := addSession(t, d, "a", 1)
	connB, sessB := addSession(t, d, "b", 2)
	connC, _ := addSession(t, d, "c", 3)

	d.JoinRoom("conversation:7", sessA)
	d.JoinRoom("conversation:7", sessB)

	res := d.BroadcastToRoom("conversation:7", "message:received", map[string]int{"id": 1})
	if res.SentTo != 2 {
		t.Fatalf("SentTo = %d, want 2", res.SentTo)
	}
	if len(connA.events()) != 1 || len(connB.events()) != 1 {
		t.Fatal("both room members, sender included, should receive the event")
	}
	if len(connC.events()) != 0 {
		t.Fatal("non-member received a room event")
	}
}

func TestBroadcastToRoomExceptSkipsOriginator(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	connA, sessA := addSession(t, d, "a", 1)
	connB, sessB := addSession(t, d, "b", 2)
	d.JoinRoom("call-42", sessA)
	d.JoinRoom("call-42", sessB)

	d.BroadcastToRoomExcept("call-42", "a", "newProducer", nil)
	if len(connA.events()) != 0 {
		t.Fatal("originator should be skipped")
	}
	if len(connB.events()) != 1 {
		t.Fatal("other member should receive the notice")
	}
}

func TestUnicastToUser(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	connA, _ := addSession(t, d, "a", 1)

	t.Run("online target", func(t *testing.T) {
		if got := d.UnicastToUser(1, "call:incoming", nil); got != Delivered {
			t.Fatalf("delivery = %v, want Delivered", got)
		}
		if events := connA.events(); len(events) != 1 || events[0] != "call:incoming" {
			t.Fatalf("events = %v", events)
		}
	})

	t.Run("offline target dropped silently", func(t *testing.T) {
		if got := d.UnicastToUser(99, "call:incoming", nil); got != Dropped {
			t.Fatalf("delivery = %v, want Dropped", got)
		}
	})

	t.Run("slow connection dropped", func(t *testing.T) {
		conn, _ := addSession(t, d, "s", 5)
		conn.fail = true
		if got := d.UnicastToUser(5, "call:incoming", nil); got != Dropped {
			t.Fatalf("delivery = %v, want Dropped", got)
		}
	})
}

func TestJoinConversationRooms(t *testing.T) {
	gw := store.NewMemoryGateway()
	gw.AddParticipant(7, 1)
	gw.AddParticipant(9, 1)
	gw.AddParticipant(7, 2)

	d := newTestDispatcher(gw)
	_, sessA := addSession(t, d, "a", 1)

	joined, err := d.JoinConversationRooms(context.Background(), sessA)
	if err != nil {
		t.Fatal(err)
	}
	if len(joined) != 2 {
		t.Fatalf("joined %v, want 2 rooms", joined)
	}
	for _, roomID := range joined {
		room, ok := d.Rooms.Get(roomID)
		if !ok || !room.Has("a") {
			t.Fatalf("connection not joined to %s", roomID)
		}
	}
}

func TestJoinConversationRoomsUnidentified(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	_, sess := addSession(t, d, "a", 0)
	if _, err := d.JoinConversationRooms(context.Background(), sess); !errors.Is(err, core.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestLeaveAllDropsEmptyRooms(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	_, sessA := addSession(t, d, "a", 1)
	_, sessB := addSession(t, d, "b", 2)
	d.JoinRoom("conversation:7", sessA)
	d.JoinRoom("conversation:7", sessB)

	if left := d.LeaveAll("a"); len(left) != 1 {
		t.Fatalf("left %v, want 1 room", left)
	}
	// B is still a member; the room must survive.
	if _, ok := d.Rooms.Get("conversation:7"); !ok {
		t.Fatal("room with remaining members was dropped")
	}

	d.LeaveAll("b")
	if _, ok := d.Rooms.Get("conversation:7"); ok {
		t.Fatal("emptied room should be deleted")
	}
}

func TestBroadcastAllExcept(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	connA, _ := addSession(t, d, "a", 1)
	connB, _ := addSession(t, d, "b", 2)
	connAnon, _ := addSession(t, d, "anon", 0)

	d.BroadcastAllExcept(1, "presence:online", presencePayload{1})
	if len(connA.events()) != 0 {
		t.Fatal("affected user should not be notified of their own transition")
	}
	if len(connB.events()) != 1 || len(connAnon.events()) != 1 {
		t.Fatal("every other connection should be notified")
	}
}

type presencePayload struct {
	UserID domain.UserID `json:"userId"`
}

func TestRoomOrderingPreserved(t *testing.T) {
	d := newTestDispatcher(store.NewMemoryGateway())
	conn, sess := addSession(t, d, "a", 1)
	d.JoinRoom("conversation:7", sess)

	for i := 0; i < 5; i++ {
		d.BroadcastToRoom("conversation:7", "message:received", map[string]int{"seq": i})
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	for i, fr := range conn.frames {
		var env struct {
			Data struct {
				Seq int `json:"seq"`
			} `json:"data"`
		}
		if err := json.Unmarshal(fr, &env); err != nil {
			t.Fatal(err)
		}
		if env.Data.Seq != i {
			t.Fatalf("frame %d carries seq %d, delivery reordered", i, env.Data.Seq)
		}
	}
}
