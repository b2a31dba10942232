package pet

import (
	"sync"
	"sync/atomic"
)

const defaultSubscriptionBuffer = 64

// Subscription receives every Change committed after it was created.
type Subscription struct {
	id       uint64
	store    *Store
	changes  chan Change
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Uint64
}

// Subscribe registers a new subscription. bufferSize controls how many
// changes can be pending before the oldest ones are dropped.
func (s *Store) Subscribe(bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = defaultSubscriptionBuffer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	sub := &Subscription{
		id:      s.nextSub,
		store:   s,
		changes: make(chan Change, bufferSize),
		done:    make(chan struct{}),
	}
	s.subs[sub.id] = sub
	return sub
}

// Subscribers returns the number of open subscriptions.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Changes returns the channel changes are delivered on. It is never closed;
// select on Done as well.
func (sub *Subscription) Changes() <-chan Change {
	return sub.changes
}

// Done is closed once the subscription is closed.
func (sub *Subscription) Done() <-chan struct{} {
	return sub.done
}

// Dropped returns how many changes were discarded because the buffer was full.
func (sub *Subscription) Dropped() uint64 {
	return sub.dropped.Load()
}

// Close unregisters the subscription. Safe to call multiple times.
func (sub *Subscription) Close() {
	sub.doneOnce.Do(func() {
		close(sub.done)
		sub.store.mu.Lock()
		delete(sub.store.subs, sub.id)
		sub.store.mu.Unlock()
	})
}

// send delivers without blocking. When the buffer is full the oldest
// pending change is dropped.
func (sub *Subscription) send(c Change) {
	select {
	case <-sub.done:
		return
	default:
	}

	select {
	case sub.changes <- c:
	default:
		select {
		case <-sub.changes:
			sub.dropped.Add(1)
		default:
		}
		select {
		case sub.changes <- c:
		default:
			sub.dropped.Add(1)
		}
	}
}
