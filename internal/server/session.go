package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/gfc-explorer/internal/model"
)

// sessionStore holds each browser session's current selection. A session is
// created on the first selection, overwritten on each subsequent one, and
// torn down after the idle TTL.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

type sessionEntry struct {
	selection model.Selection
	updatedAt time.Time
}

func newSessionStore(ttl time.Duration) *sessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &sessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
	}
}

// Set stores the selection under the session id, minting a new id when none
// is given. Returns the session id.
func (s *sessionStore) Set(id string, sel model.Selection) string {
	if id == "" {
		id = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{selection: sel, updatedAt: time.Now()}
	return id
}

// Get returns the session's current selection. ok is false for unknown or
// expired sessions.
func (s *sessionStore) Get(id string) (model.Selection, bool) {
	if id == "" {
		return model.Selection{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return model.Selection{}, false
	}
	if time.Since(e.updatedAt) > s.ttl {
		delete(s.sessions, id)
		return model.Selection{}, false
	}
	return e.selection, true
}

// Len returns the number of live sessions.
func (s *sessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// evictLoop drops expired sessions until ctx is cancelled.
func (s *sessionStore) evictLoop(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.mu.Lock()
			for id, e := range s.sessions {
				if time.Since(e.updatedAt) > s.ttl {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
