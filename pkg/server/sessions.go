package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/cv-builder/pkg/profile"
)

const (
	// DefaultSessionTTL is how long an untouched session is kept.
	DefaultSessionTTL = time.Hour
	// maxSweepInterval bounds how late an idle session may be evicted.
	maxSweepInterval = time.Minute
)

type session struct {
	store    *profile.Store
	lastSeen time.Time
	streams  int
}

// Sessions maps session ids to in-memory profile stores.
// Nothing is persisted; sessions end when they go idle or the process exits.
type Sessions struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*session
	now     func() time.Time
}

// NewSessions creates an empty session table.
func NewSessions() (sessions *Sessions) {
	sessions = &Sessions{
		entries: make(map[uuid.UUID]*session),
		now:     time.Now,
	}
	return sessions
}

// Create starts a new session.
func (s *Sessions) Create(opts ...profile.StoreOption) (id uuid.UUID, store *profile.Store) {
	id = uuid.New()
	store = profile.NewStore(opts...)

	s.mu.Lock()
	s.entries[id] = &session{store: store, lastSeen: s.now()}
	s.mu.Unlock()

	return id, store
}

// Get returns the store for a session id string and marks the session as used.
func (s *Sessions) Get(idStr string) (store *profile.Store, ok bool) {
	entry, ok := s.lookup(idStr)
	if ok {
		store = entry.store
	}
	return store, ok
}

// Attach is Get for long-lived readers. The session is never evicted while
// attached; release must be called exactly once when the reader is done.
func (s *Sessions) Attach(idStr string) (store *profile.Store, release func(), ok bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return store, release, ok
	}

	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok {
		entry.lastSeen = s.now()
		entry.streams++
		store = entry.store
	}
	s.mu.Unlock()

	if !ok {
		return store, release, ok
	}

	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			entry.streams--
			entry.lastSeen = s.now()
			s.mu.Unlock()
		})
	}
	return store, release, ok
}

func (s *Sessions) lookup(idStr string) (entry *session, ok bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return entry, ok
	}

	s.mu.Lock()
	entry, ok = s.entries[id]
	if ok {
		entry.lastSeen = s.now()
	}
	s.mu.Unlock()

	return entry, ok
}

// Sweep removes sessions untouched for longer than idle and returns how many
// were removed. Sessions with an attached reader are kept.
func (s *Sessions) Sweep(idle time.Duration) (evicted int) {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	for id, entry := range s.entries {
		if entry.streams == 0 && entry.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			evicted++
		}
	}
	s.mu.Unlock()

	return evicted
}

// Expire sweeps idle sessions periodically until ctx is done.
// onEvict, if set, is called with the count after each sweep that removed any.
func (s *Sessions) Expire(ctx context.Context, idle time.Duration, onEvict func(n int)) {
	interval := idle / 2
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	if interval <= 0 {
		interval = maxSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep(idle)
			if n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() (n int) {
	s.mu.Lock()
	n = len(s.entries)
	s.mu.Unlock()
	return n
}
