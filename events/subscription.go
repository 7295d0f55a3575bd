package events

import (
	"iter"
	"sync"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/google/uuid"
)

// Subscription is a cancellable handle on the batches published under a watched path
type Subscription struct {
	ID        string
	root      fspath.Path
	recursive bool
	bus       *Bus

	mu     sync.Mutex // Protects the fields below
	cond   *sync.Cond
	queue  []memfs.ChangeBatch
	closed bool

	out       chan memfs.ChangeBatch
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscription(b *Bus, root fspath.Path, recursive bool) *Subscription {
	s := &Subscription{
		ID:        uuid.NewString(),
		root:      root,
		recursive: recursive,
		bus:       b,
		out:       make(chan memfs.ChangeBatch, b.buffer),
		done:      make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.pump()
	return s
}

// Root returns the watched path
func (s *Subscription) Root() fspath.Path {
	return s.root
}

// Recursive reports whether the whole subtree below Root is watched
func (s *Subscription) Recursive() bool {
	return s.recursive
}

// Events returns the channel batches are delivered on. It is closed by [Subscription.Close].
func (s *Subscription) Events() <-chan memfs.ChangeBatch {
	return s.out
}

// All returns a lazy, unbounded sequence of individual events in delivery order.
// The sequence ends when the subscription is closed.
func (s *Subscription) All() iter.Seq[memfs.ChangeEvent] {
	return func(yield func(memfs.ChangeEvent) bool) {
		for batch := range s.out {
			for _, ev := range batch.Events {
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// Close releases the subscription. Undelivered batches are discarded. Safe to call repeatedly.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.cond.Broadcast()
		s.mu.Unlock()
		close(s.done)
		s.bus.remove(s.ID)

		logger := util.GetLogger("Subscription.Close")
		logger.Debug().Str("id", s.ID).Msg("Subscription closed")
	})
}

// Matches reports whether an event at p is visible to this subscription
func (s *Subscription) Matches(p fspath.Path) bool {
	if s.recursive {
		return p.HasPrefix(s.root)
	}
	return p.Equal(s.root) || (!p.IsRoot() && p.Parent().Equal(s.root))
}

// enqueue appends the visible part of batch. Never blocks on the consumer.
func (s *Subscription) enqueue(batch memfs.ChangeBatch) {
	var visible []memfs.ChangeEvent
	for _, ev := range batch.Events {
		if s.Matches(ev.Path) {
			visible = append(visible, ev)
		}
	}
	if len(visible) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, memfs.ChangeBatch{ID: batch.ID, Events: visible})
	s.cond.Signal()
}

// pump moves queued batches to out until the subscription closes
func (s *Subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		batch := s.queue[0]
		s.queue[0] = memfs.ChangeBatch{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- batch:
		case <-s.done:
			return
		}
	}
}
