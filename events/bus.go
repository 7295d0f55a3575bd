// Package events delivers batches of structural change events from the tree
// engine to watchers. Publishing never blocks and never drops: every
// subscription owns an unbounded queue drained by its own goroutine.
package events

import (
	"sync/atomic"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/brettbedarf/memfs/internal/metrics"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

// Bus fans published batches out to subscriptions
type Bus struct {
	subs   *xsync.Map[string, *Subscription]
	buffer int // channel capacity handed to each new subscription
	closed atomic.Bool
}

// NewBus returns a Bus whose subscriptions get a channel of capacity buffer
func NewBus(buffer int) *Bus {
	return &Bus{
		subs:   xsync.NewMap[string, *Subscription](),
		buffer: max(buffer, 0),
	}
}

// NewBatchID returns a fresh identifier for a [memfs.ChangeBatch]
func NewBatchID() string {
	return uuid.NewString()
}

// Publish queues batch for every subscription watching any of its paths.
// It returns immediately; delivery happens on each subscription's goroutine.
func (b *Bus) Publish(batch memfs.ChangeBatch) {
	if len(batch.Events) == 0 || b.closed.Load() {
		return
	}
	logger := util.GetLogger("Bus.Publish")
	logger.Trace().Str("batch", batch.ID).Int("events", len(batch.Events)).Msg("Publish called")

	for _, ev := range batch.Events {
		metrics.RecordEvent(ev.Type.String())
	}
	b.subs.Range(func(_ string, s *Subscription) bool {
		s.enqueue(batch)
		return true
	})
}

// Subscribe registers a watcher rooted at root. With recursive false only root
// itself and its direct children are reported.
func (b *Bus) Subscribe(root fspath.Path, recursive bool) *Subscription {
	s := newSubscription(b, root, recursive)
	if b.closed.Load() {
		s.Close()
		return s
	}
	b.subs.Store(s.ID, s)
	metrics.SetWatchersActive(b.subs.Size())
	if b.closed.Load() {
		// lost a race with Close
		s.Close()
		return s
	}

	logger := util.GetLogger("Bus.Subscribe")
	logger.Debug().Str("id", s.ID).Stringer("root", root).Bool("recursive", recursive).Msg("Subscription added")
	return s
}

// Count returns the number of active subscriptions
func (b *Bus) Count() int {
	return b.subs.Size()
}

// Close releases every subscription; later publishes are ignored
func (b *Bus) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.subs.Range(func(_ string, s *Subscription) bool {
		s.Close()
		return true
	})
}

func (b *Bus) remove(id string) {
	if _, ok := b.subs.LoadAndDelete(id); ok {
		metrics.SetWatchersActive(b.subs.Size())
	}
}
