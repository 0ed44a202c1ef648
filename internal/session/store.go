// Package session keeps calculator engines for HTTP clients.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/keycalc"
)

// ErrNotFound is returned for session ids the store does not hold, including
// sessions which expired.
var ErrNotFound = errors.New("session not found")

type entry struct {
	// mu serializes use of e. seen is guarded by the store's lock instead.
	mu   sync.Mutex
	e    *keycalc.Engine
	seen time.Time
}

// Store holds engines keyed by session id. It is safe for concurrent use; uses
// of any one engine are serialized.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	opts     []keycalc.ContextOption
	log      logrus.FieldLogger

	// now is time.Now outside tests.
	now func() time.Time
}

// NewStore creates a store whose sessions expire after ttl without use. Each
// engine is created with opts.
func NewStore(ttl time.Duration, log logrus.FieldLogger, opts ...keycalc.ContextOption) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Create starts a new session and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &entry{e: keycalc.NewEngine(s.opts...), seen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"session": id, "sessions": n}).Debug("session created")
	return id
}

// Do calls f with the engine of the session id. No other call to Do for the
// same session runs concurrently with f. The error is ErrNotFound if there is
// no such session, otherwise whatever f returns.
func (s *Store) Do(id string, f func(*keycalc.Engine) error) error {
	s.mu.Lock()
	ent := s.sessions[id]
	if ent != nil {
		ent.seen = s.now()
	}
	s.mu.Unlock()
	if ent == nil {
		return ErrNotFound
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	return f(ent.e)
}

// Delete ends the session id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.log.WithField("session", id).Debug("session deleted")
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions unused since ttl before now and returns the number
// removed.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)
	n := 0
	s.mu.Lock()
	for id, ent := range s.sessions {
		if ent.seen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	s.mu.Unlock()
	return n
}

// Run sweeps the store every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.log.WithFields(logrus.Fields{"expired": n, "sessions": s.Len()}).Info("swept sessions")
			}
		}
	}
}
