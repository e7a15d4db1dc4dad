package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhisek/quizflow/internal/session"
)

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

type liveSession struct {
	sess     *session.Session
	lastUsed time.Time
}

// Registry keeps running sessions in memory. Sessions are not safe for
// concurrent use, so every access goes through Do, which holds the lock
// for the duration of the callback.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	ttl      time.Duration
	now      func() time.Time
}

// NewRegistry creates a Registry that evicts sessions idle for longer than
// ttl. A non-positive ttl uses DefaultSessionTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		sessions: make(map[string]*liveSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put registers s under its ID.
func (r *Registry) Put(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = &liveSession{sess: s, lastUsed: r.now()}
}

// Do runs fn on the session with the given ID and marks it as used.
// Expired sessions are treated as missing.
func (r *Registry) Do(id string, fn func(*session.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ls, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := r.now()
	if now.Sub(ls.lastUsed) > r.ttl {
		delete(r.sessions, id)
		return ErrSessionNotFound
	}
	ls.lastUsed = now
	return fn(ls.sess)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int
	for id, ls := range r.sessions {
		if now.Sub(ls.lastUsed) > r.ttl {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of sessions held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Janitor calls Sweep every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
