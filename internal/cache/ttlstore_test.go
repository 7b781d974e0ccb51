package cache

import (
	"testing"
	"time"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
)

func newTestStore(t *testing.T, retention time.Duration) *TTLStore[string] {
	t.Helper()
	return NewTTLStore[string](retention, time.Minute, logger.NewNop())
}

func TestSetGetDelete(t *testing.T) {
	s := newTestStore(t, time.Minute)

	if _, ok := s.Get("missing"); ok {
		t.Fatalf("Get on an empty store reported a hit")
	}
	s.Set("a", "one")
	s.Set("b", "two")
	if got, ok := s.Get("a"); !ok || got != "one" {
		t.Fatalf("Get(a): want=%q got=%q ok=%v", "one", got, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("Len: want=2 got=%d", s.Len())
	}
	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatalf("deleted key still readable")
	}
	if s.Len() != 1 {
		t.Fatalf("Len after delete: want=1 got=%d", s.Len())
	}
}

func TestGetExpiresLazily(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)
	s.Set("a", "one")
	time.Sleep(100 * time.Millisecond)
	if _, ok := s.Get("a"); ok {
		t.Fatalf("expired entry still readable")
	}
	// The lazy read also removes the entry.
	if s.Len() != 0 {
		t.Fatalf("Len after expired read: want=0 got=%d", s.Len())
	}
}

func TestSetKeepsInsertionClock(t *testing.T) {
	s := newTestStore(t, 150*time.Millisecond)
	s.Set("a", "one")
	time.Sleep(100 * time.Millisecond)
	// Rewrites must not extend the lifetime.
	s.Set("a", "two")
	if got, ok := s.Get("a"); !ok || got != "two" {
		t.Fatalf("Get after rewrite: want=%q got=%q ok=%v", "two", got, ok)
	}
	time.Sleep(100 * time.Millisecond)
	if _, ok := s.Get("a"); ok {
		t.Fatalf("rewrite extended the retention window")
	}
}

func TestSweepExpired(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)
	s.Set("old", "one")
	time.Sleep(100 * time.Millisecond)
	s.Set("fresh", "two")

	removed := s.sweepExpired()
	if removed != 1 {
		t.Fatalf("sweepExpired: want=1 got=%d", removed)
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Fatalf("sweep removed a live entry")
	}
	if s.Len() != 1 {
		t.Fatalf("Len after sweep: want=1 got=%d", s.Len())
	}
}
