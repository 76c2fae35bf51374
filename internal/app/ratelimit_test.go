package app

import (
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		if !rl.Allow(1) {
			t.Fatalf("attempt %d should pass", i)
		}
	}
	if rl.Allow(1) {
		t.Fatal("limit exceeded, should block")
	}
	if !rl.Allow(2) {
		t.Fatal("limits are per user")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow(1) {
		t.Fatal("window expired, should pass again")
	}
}
