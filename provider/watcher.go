package provider

import (
	"iter"
	"sync"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/events"
)

// Watcher delivers host change events for one [Provider.Watch] call.
// Each element of Events() holds the events of a single engine operation.
type Watcher struct {
	sub    *events.Subscription
	scheme string
	out    chan []FileChangeEvent
	done   chan struct{}
	once   sync.Once
}

func newWatcher(scheme string, sub *events.Subscription) *Watcher {
	w := &Watcher{
		sub:    sub,
		scheme: scheme,
		out:    make(chan []FileChangeEvent),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Watcher) run() {
	defer close(w.out)
	for batch := range w.sub.Events() {
		select {
		case w.out <- w.convert(batch):
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) convert(batch memfs.ChangeBatch) []FileChangeEvent {
	out := make([]FileChangeEvent, 0, len(batch.Events))
	for _, ev := range batch.Events {
		out = append(out, FileChangeEvent{
			Type: toHostChange(ev.Type),
			URI:  URI{Scheme: w.scheme, Path: ev.Path},
		})
	}
	return out
}

// ID returns the identifier of the underlying subscription
func (w *Watcher) ID() string {
	return w.sub.ID
}

// Events returns the batch channel; it is closed once the watcher is disposed
func (w *Watcher) Events() <-chan []FileChangeEvent {
	return w.out
}

// All yields events one at a time until the watcher is disposed or the
// consumer stops.
func (w *Watcher) All() iter.Seq[FileChangeEvent] {
	return func(yield func(FileChangeEvent) bool) {
		for batch := range w.out {
			for _, ev := range batch {
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// Dispose stops delivery and releases the subscription. Safe to call more than once.
func (w *Watcher) Dispose() {
	w.once.Do(func() {
		close(w.done)
		w.sub.Close()
	})
}
