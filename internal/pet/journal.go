package pet

import (
	"context"

	"github.com/charmbracelet/log"
)

// Recorder persists committed changes.
// This lets the journal run without depending on the storage package.
type Recorder interface {
	RecordChange(c Change) error
}

// RunJournal forwards every change delivered on sub to rec until ctx is
// cancelled or sub is closed. Changes already buffered when that happens are
// still recorded. Recording is best effort: failures and changes the
// subscription had to drop are logged and the loop keeps going. The
// subscription is closed on return.
func RunJournal(ctx context.Context, sub *Subscription, rec Recorder, logger *log.Logger) error {
	defer sub.Close()

	j := journal{sub: sub, rec: rec, logger: logger}
	for {
		select {
		case <-ctx.Done():
			j.drain()
			return nil
		case <-sub.Done():
			j.drain()
			return nil
		case c := <-sub.Changes():
			j.record(c)
		}
	}
}

type journal struct {
	sub      *Subscription
	rec      Recorder
	logger   *log.Logger
	reported uint64
}

// drain records whatever is still buffered without waiting for more.
func (j *journal) drain() {
	for {
		select {
		case c := <-j.sub.Changes():
			j.record(c)
		default:
			j.reportDropped()
			return
		}
	}
}

func (j *journal) record(c Change) {
	j.reportDropped()
	if err := j.rec.RecordChange(c); err != nil && j.logger != nil {
		j.logger.Warn("could not record change",
			"id", c.ID,
			"action", c.Action,
			"error", err,
		)
	}
}

func (j *journal) reportDropped() {
	n := j.sub.Dropped()
	if n == j.reported {
		return
	}
	if j.logger != nil {
		j.logger.Warn("journal fell behind, changes were not recorded",
			"dropped", n-j.reported,
			"total_dropped", n,
		)
	}
	j.reported = n
}
