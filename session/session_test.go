package session

import (
	"sync"
	"testing"
	"time"

	"github.com/use-agent/scrapeui/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, max int, ttl time.Duration) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := New(max, ttl, 20)
	s.now = clock.now
	t.Cleanup(s.Stop)
	return s, clock
}

func TestStore_GetOrCreate(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)

	a, created := s.GetOrCreate("")
	if !created || a.ID == "" {
		t.Fatalf("expected a new session, got created=%v id=%q", created, a.ID)
	}
	b, created := s.GetOrCreate(a.ID)
	if created || b != a {
		t.Error("known id must return the same session")
	}
	c, created := s.GetOrCreate("unknown")
	if !created || c.ID == "unknown" {
		t.Error("unknown id must create a session with a fresh id")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Minute)
	sess := s.Create()

	clock.advance(30 * time.Second)
	if _, ok := s.Get(sess.ID); !ok {
		t.Fatal("session should still be live")
	}

	clock.advance(2 * time.Minute)
	if _, ok := s.Get(sess.ID); ok {
		t.Error("session should have expired")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestStore_EvictExpired(t *testing.T) {
	s, clock := newTestStore(t, 10, time.Minute)
	s.Create()
	s.Create()
	clock.advance(2 * time.Minute)
	fresh := s.Create()

	if n := s.evictExpired(); n != 2 {
		t.Errorf("evicted %d, want 2", n)
	}
	if _, ok := s.Get(fresh.ID); !ok {
		t.Error("fresh session must survive")
	}
}

func TestStore_EvictsLeastRecentlySeen(t *testing.T) {
	s, clock := newTestStore(t, 2, time.Hour)
	first := s.Create()
	clock.advance(time.Second)
	second := s.Create()
	clock.advance(time.Second)
	s.Get(first.ID)
	clock.advance(time.Second)

	s.Create()
	if _, ok := s.Get(second.ID); ok {
		t.Error("least recently seen session should be evicted")
	}
	if _, ok := s.Get(first.ID); !ok {
		t.Error("recently seen session must survive")
	}
}

func TestSession_Results(t *testing.T) {
	s, _ := newTestStore(t, 10, time.Hour)
	sess := s.Create()

	if url, recs := sess.Results(); url != "" || len(recs) != 0 {
		t.Fatalf("new session has results: %q %v", url, recs)
	}
	sess.SetResults("https://example.com", []models.Record{{"value": "x"}})
	url, recs := sess.Results()
	if url != "https://example.com" || len(recs) != 1 {
		t.Errorf("Results = %q %v", url, recs)
	}
}

func TestStore_StopIdempotent(t *testing.T) {
	s := New(1, time.Hour, 1)
	s.Stop()
	s.Stop()
}
