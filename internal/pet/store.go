package pet

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns the single pet State.
// All methods are safe for concurrent use; each operation is atomic.
type Store struct {
	mu    sync.Mutex
	state State
	now   func() time.Time
	newID func() string

	subs    map[uint64]*Subscription
	nextSub uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator for Change IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore creates a store holding the default state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
		subs:  make(map[uint64]*Subscription),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = DefaultState(s.now())
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddHeart increments hearts. At MaxHearts it changes nothing and returns a BoundaryError.
func (s *Store) AddHeart() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Hearts >= MaxHearts {
		return s.state, maxHeartsError(s.state.Hearts)
	}
	s.state.Hearts++
	s.commit(ActionAddHeart)
	return s.state, nil
}

// RemoveHeart decrements hearts. At MinHearts it changes nothing and returns a BoundaryError.
func (s *Store) RemoveHeart() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Hearts <= MinHearts {
		return s.state, minHeartsError(s.state.Hearts)
	}
	s.state.Hearts--
	s.commit(ActionRemoveHeart)
	return s.state, nil
}

// ToggleMute flips IsMuted.
func (s *Store) ToggleMute() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsMuted = !s.state.IsMuted
	s.commit(ActionToggleMute)
	return s.state
}

// Apply performs a bulk update. Hearts, when present, must be within bounds;
// a rejected update applies nothing. An empty update still stamps LastUpdated.
func (s *Store) Apply(u Update) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Hearts != nil && (*u.Hearts < MinHearts || *u.Hearts > MaxHearts) {
		return s.state, rangeError(*u.Hearts)
	}
	if u.Hearts != nil {
		s.state.Hearts = *u.Hearts
	}
	if u.IsMuted != nil {
		s.state.IsMuted = *u.IsMuted
	}
	s.commit(ActionUpdate)
	return s.state, nil
}

// Reset replaces the state with the defaults.
func (s *Store) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = DefaultState(s.now())
	s.commit(ActionReset)
	return s.state
}

// commit stamps the state and publishes the change. Caller holds s.mu.
func (s *Store) commit(action Action) {
	s.state.LastUpdated = s.now()
	change := Change{
		ID:     s.newID(),
		Action: action,
		State:  s.state,
	}
	for _, sub := range s.subs {
		sub.send(change)
	}
}
