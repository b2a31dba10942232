package pet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c := <-sub.Changes():
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func assertNoChange(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case c := <-sub.Changes():
		t.Fatalf("unexpected change: %+v", c)
	default:
	}
}

func TestSubscribeReceivesMutations(t *testing.T) {
	s := newTestStore()
	sub := s.Subscribe(8)
	defer sub.Close()

	s.AddHeart()    //nolint:errcheck
	s.RemoveHeart() //nolint:errcheck
	s.ToggleMute()
	s.Apply(Update{Hearts: intPtr(5)}) //nolint:errcheck
	s.Reset()

	wantActions := []Action{ActionAddHeart, ActionRemoveHeart, ActionToggleMute, ActionUpdate, ActionReset}
	for i, want := range wantActions {
		c := recv(t, sub)
		assert.Equal(t, want, c.Action, "change %d", i)
		assert.Equal(t, fmt.Sprintf("change-%d", i+1), c.ID)
	}
	assertNoChange(t, sub)
}

func TestRejectedOperationsPublishNothing(t *testing.T) {
	s := newTestStore()
	_, err := s.Apply(Update{Hearts: intPtr(MaxHearts)})
	require.NoError(t, err)

	sub := s.Subscribe(8)
	defer sub.Close()

	_, err = s.AddHeart()
	require.Error(t, err)
	_, err = s.Apply(Update{Hearts: intPtr(7)})
	require.Error(t, err)

	assertNoChange(t, sub)
}

func TestChangeCarriesResultingState(t *testing.T) {
	s := newTestStore()
	sub := s.Subscribe(1)
	defer sub.Close()

	st, err := s.AddHeart()
	require.NoError(t, err)

	c := recv(t, sub)
	assert.Equal(t, st, c.State)
}

func TestSubscriptionDropsOldestWhenFull(t *testing.T) {
	s := newTestStore()
	sub := s.Subscribe(2)
	defer sub.Close()

	s.ToggleMute()
	s.ToggleMute()
	s.ToggleMute()

	first := recv(t, sub)
	second := recv(t, sub)
	assert.Equal(t, "change-2", first.ID)
	assert.Equal(t, "change-3", second.ID)
	assertNoChange(t, sub)
	assert.Equal(t, uint64(1), sub.Dropped())
}

func TestSubscriptionClose(t *testing.T) {
	s := newTestStore()
	sub := s.Subscribe(4)
	require.Equal(t, 1, s.Subscribers())

	sub.Close()
	sub.Close()

	assert.Equal(t, 0, s.Subscribers())
	select {
	case <-sub.Done():
	default:
		t.Fatal("Done not closed")
	}

	s.ToggleMute()
	assertNoChange(t, sub)
}

type fakeRecorder struct {
	mu      sync.Mutex
	changes []Change
	fail    bool
	got     chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{got: make(chan struct{}, 16)}
}

func (r *fakeRecorder) RecordChange(c Change) error {
	r.mu.Lock()
	r.changes = append(r.changes, c)
	fail := r.fail
	r.mu.Unlock()
	select {
	case r.got <- struct{}{}:
	default:
	}
	if fail {
		return errors.New("disk full")
	}
	return nil
}

func (r *fakeRecorder) recorded() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func TestRunJournalRecordsUntilCancelled(t *testing.T) {
	s := newTestStore()
	rec := newFakeRecorder()
	sub := s.Subscribe(8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunJournal(ctx, sub, rec, nil) }()

	s.AddHeart() //nolint:errcheck
	s.Reset()

	for i := 0; i < 2; i++ {
		select {
		case <-rec.got:
		case <-time.After(time.Second):
			t.Fatal("journal did not record change")
		}
	}

	cancel()
	require.NoError(t, <-done)

	got := rec.recorded()
	require.Len(t, got, 2)
	assert.Equal(t, ActionAddHeart, got[0].Action)
	assert.Equal(t, ActionReset, got[1].Action)
	assert.Equal(t, 0, s.Subscribers(), "journal closes its subscription")
}

func TestRunJournalKeepsGoingOnRecordError(t *testing.T) {
	s := newTestStore()
	rec := newFakeRecorder()
	rec.fail = true
	sub := s.Subscribe(8)

	done := make(chan error, 1)
	go func() { done <- RunJournal(context.Background(), sub, rec, nil) }()

	s.ToggleMute()
	s.ToggleMute()
	for i := 0; i < 2; i++ {
		select {
		case <-rec.got:
		case <-time.After(time.Second):
			t.Fatal("journal stopped after a failed write")
		}
	}

	sub.Close()
	require.NoError(t, <-done)
	assert.Len(t, rec.recorded(), 2)
}

func TestRunJournalDrainsBufferedChangesOnCancel(t *testing.T) {
	s := newTestStore()
	rec := newFakeRecorder()
	sub := s.Subscribe(64)

	for i := 0; i < 50; i++ {
		s.ToggleMute()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, RunJournal(ctx, sub, rec, nil))

	got := rec.recorded()
	require.Len(t, got, 50)
	for i, c := range got {
		assert.Equal(t, fmt.Sprintf("change-%d", i+1), c.ID)
	}
}

func TestRunJournalDrainsBufferedChangesOnClose(t *testing.T) {
	s := newTestStore()
	rec := newFakeRecorder()
	sub := s.Subscribe(8)

	s.AddHeart() //nolint:errcheck
	s.Reset()
	sub.Close()

	require.NoError(t, RunJournal(context.Background(), sub, rec, nil))
	assert.Len(t, rec.recorded(), 2)
}

func TestRunJournalWarnsAboutDroppedChanges(t *testing.T) {
	s := newTestStore()
	rec := newFakeRecorder()
	sub := s.Subscribe(2)

	for i := 0; i < 5; i++ {
		s.ToggleMute()
	}
	require.Equal(t, uint64(3), sub.Dropped())

	var buf bytes.Buffer
	logger := log.New(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, RunJournal(ctx, sub, rec, logger))

	got := rec.recorded()
	require.Len(t, got, 2)
	assert.Equal(t, "change-4", got[0].ID)
	assert.Equal(t, "change-5", got[1].ID)
	assert.Contains(t, buf.String(), "journal fell behind")
	assert.Contains(t, buf.String(), "dropped=3")
}
