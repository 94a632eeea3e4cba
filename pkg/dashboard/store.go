package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// DefaultMaxSessions caps the number of live sessions.
const DefaultMaxSessions = 1024

// Factory builds the dashboard of a new session.
type Factory func() *Dashboard

// Store keeps one Dashboard per browser session, keyed by a random id.
type Store struct {
	factory Factory
	ttl     time.Duration
	max     int
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	dashboard *Dashboard
	lastSeen  time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle lifetime of a session.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps the live sessions. Opening one more closes the
// session that has been idle the longest.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs a Store that builds dashboards with factory.
func NewStore(factory Factory, options ...StoreOption) *Store {
	s := &Store{
		factory:  factory,
		ttl:      DefaultSessionTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create opens a new session and mounts its dashboard. When the store is
// full the least recently seen session is closed first.
func (s *Store) Create(ctx context.Context) (string, *Dashboard) {
	id := uuid.NewString()
	dash := s.factory()

	s.mu.Lock()
	var evicted *Dashboard
	if len(s.sessions) >= s.max {
		evicted = s.evictOldestLocked()
	}
	s.sessions[id] = &session{dashboard: dash, lastSeen: s.now()}
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	dash.Mount(ctx)
	return id, dash
}

func (s *Store) evictOldestLocked() *Dashboard {
	var (
		oldestID string
		oldest   *session
	)
	for id, entry := range s.sessions {
		if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, entry
		}
	}
	if oldest == nil {
		return nil
	}
	delete(s.sessions, oldestID)
	return oldest.dashboard
}

// Get returns the dashboard of id and refreshes its expiry.
func (s *Store) Get(id string) (*Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(entry.lastSeen) > s.ttl {
		delete(s.sessions, id)
		entry.dashboard.Close()
		return nil, false
	}
	entry.lastSeen = now
	return entry.dashboard, true
}

// Resolve returns the dashboard of id, opening a new session when id is
// unknown or expired. The returned id is the one to hand back to the client.
func (s *Store) Resolve(ctx context.Context, id string) (string, *Dashboard) {
	if id != "" {
		if dash, ok := s.Get(id); ok {
			return id, dash
		}
	}
	return s.Create(ctx)
}

// Delete closes and forgets the session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		entry.dashboard.Close()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes every session idle for longer than the TTL and returns how
// many were evicted.
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Dashboard
	for id, entry := range s.sessions {
		if now.Sub(entry.lastSeen) > s.ttl {
			expired = append(expired, entry.dashboard)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, dash := range expired {
		dash.Close()
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done, then closes
// the remaining sessions.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, entry := range sessions {
		entry.dashboard.Close()
	}
}
