// Package drafts keeps in-progress reservation drafts in memory. A draft
// lives for one page visit: it is created when the reservation page loads
// and dropped after a successful submission or when it sits idle past the
// TTL.
package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/example/burger-helsinki/internal/reservation"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("draft not found")

type Store struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	drafts map[string]*reservation.Draft
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, drafts: make(map[string]*reservation.Draft)}
}

// WithClock swaps the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Create() reservation.Draft {
	d := reservation.NewDraft(uuid.NewString(), s.now())
	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()
	return *d
}

// Get returns a copy of the draft.
func (s *Store) Get(id string) (reservation.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return reservation.Draft{}, ErrNotFound
	}
	return copyDraft(d), nil
}

// Update runs fn against the stored draft under the store lock and returns
// a copy of the result. fn's error is returned as-is; mutations made before
// the error are kept, matching the draft's own semantics.
func (s *Store) Update(id string, fn func(*reservation.Draft) error) (reservation.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return reservation.Draft{}, ErrNotFound
	}
	err := fn(d)
	d.UpdatedAt = s.now()
	return copyDraft(d), err
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
}

// Expire drops drafts idle for longer than the TTL. Drafts with a
// submission in flight are kept. It returns the number removed.
func (s *Store) Expire() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, d := range s.drafts {
		if d.Submitting || d.UpdatedAt.After(cutoff) {
			continue
		}
		delete(s.drafts, id)
		n++
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func copyDraft(d *reservation.Draft) reservation.Draft {
	out := *d
	if d.Contact != nil {
		c := *d.Contact
		out.Contact = &c
	}
	return out
}
