package app

import (
	"sync"
	"testing"

	"github.com/BradMoyetones/chat-backend-go/internal/domain"
)

func TestPresenceLastWriterWins(t *testing.T) {
	p := NewPresence()

	p.SetOnline(1, "conn-a")
	prev, replaced := p.SetOnline(1, "conn-b")
	if !replaced || prev != "conn-a" {
		t.Fatalf("expected eviction of conn-a, got prev=%q replaced=%v", prev, replaced)
	}

	cid, ok := p.Resolve(1)
	if !ok || cid != "conn-b" {
		t.Fatalf("resolve = %q, %v; want conn-b", cid, ok)
	}
}

func TestPresenceSetOfflineIdempotent(t *testing.T) {
	p := NewPresence()
	if p.SetOffline(7) {
		t.Fatal("offline of absent user should be a no-op")
	}
	p.SetOnline(7, "c1")
	if !p.SetOffline(7) {
		t.Fatal("first offline should remove the mapping")
	}
	if p.SetOffline(7) {
		t.Fatal("second offline should be a no-op")
	}
}

func TestPresenceSetOfflineConn(t *testing.T) {
	p := NewPresence()
	p.SetOnline(1, "old")
	p.SetOnline(1, "new")

	// A stale disconnect for the evicted connection must not clobber
	// the newer identify.
	if p.SetOfflineConn(1, "old") {
		t.Fatal("stale disconnect removed a newer mapping")
	}
	if !p.IsOnline(1) {
		t.Fatal("user should still be online")
	}
	if !p.SetOfflineConn(1, "new") {
		t.Fatal("owning connection should clear the mapping")
	}
	if p.IsOnline(1) {
		t.Fatal("user should be offline")
	}
}

func TestPresenceFilterOnline(t *testing.T) {
	p := NewPresence()
	p.SetOnline(1, "a")
	p.SetOnline(3, "b")

	got := p.FilterOnline([]domain.UserID{1, 2, 3, 4})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("FilterOnline = %v, want [1 3]", got)
	}
	if len(p.FilterOnline(nil)) != 0 {
		t.Fatal("empty input should yield empty subset")
	}
}

func TestPresenceConcurrentUpdates(t *testing.T) {
	p := NewPresence()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.SetOnline(1, "c")
		}()
		go func() {
			defer wg.Done()
			p.SetOffline(1)
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the registry must be internally
	// consistent: IsOnline and Resolve agree.
	cid, ok := p.Resolve(1)
	if ok != p.IsOnline(1) {
		t.Fatalf("inconsistent state: resolve ok=%v cid=%q", ok, cid)
	}
}
