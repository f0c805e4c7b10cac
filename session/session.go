// Package session keeps per-visitor UI state: the last results and the job
// history. The scrape core never reads it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/scrapeui/history"
	"github.com/use-agent/scrapeui/models"
)

// Session is one visitor's state. It is safe for concurrent use.
type Session struct {
	ID      string
	History *history.Recorder

	mu       sync.RWMutex
	lastURL  string
	results  []models.Record
	lastSeen time.Time
}

// SetResults replaces the last successful results.
func (s *Session) SetResults(url string, records []models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastURL = url
	s.results = records
}

// Results returns the last successful results and the url they came from.
func (s *Session) Results() (string, []models.Record) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastURL, s.results
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) seen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Store is an in-memory session table. It is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	ttl         time.Duration
	historySize int
	now         func() time.Time

	stop chan struct{}
	once sync.Once
}

// New creates a Store. A background goroutine evicts sessions idle longer
// than ttl; call Stop to end it.
func New(maxSessions int, ttl time.Duration, historySize int) *Store {
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		historySize: historySize,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Get returns the live session with the given id.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.seen()) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, false
	}
	sess.touch(s.now())
	return sess, true
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when id is unknown or expired. created reports which happened.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Create adds a new session. When the store is full the least recently
// seen session is evicted to make room.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		History:  history.New(s.historySize),
		results:  []models.Record{},
		lastSeen: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		if t := sess.seen(); oldestID == "" || t.Before(oldest) {
			oldestID, oldest = id, t
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

// evictExpired removes every session idle longer than the TTL.
func (s *Store) evictExpired() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.seen().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// cleanupLoop evicts expired sessions every 5 minutes.
func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}
