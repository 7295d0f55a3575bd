package events

import (
	"testing"
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(t memfs.ChangeType, p string) memfs.ChangeEvent {
	return memfs.ChangeEvent{Type: t, Path: fspath.MustParse(p)}
}

func batch(events ...memfs.ChangeEvent) memfs.ChangeBatch {
	return memfs.ChangeBatch{ID: NewBatchID(), Events: events}
}

// receive waits for the next batch or fails the test
func receive(t *testing.T, s *Subscription) memfs.ChangeBatch {
	t.Helper()
	select {
	case b, ok := <-s.Events():
		require.True(t, ok, "events channel closed unexpectedly")
		return b
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for batch")
		return memfs.ChangeBatch{}
	}
}

// assertNoBatch verifies nothing is delivered within a short window
func assertNoBatch(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case b := <-s.Events():
		t.Fatalf("unexpected batch %v", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_SubscribeClose(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s1 := b.Subscribe(fspath.Root(), true)
	s2 := b.Subscribe(fspath.Root(), true)
	require.Equal(t, 2, b.Count())
	assert.NotEqual(t, s1.ID, s2.ID)

	s1.Close()
	assert.Equal(t, 1, b.Count())
	s1.Close() // idempotent
	assert.Equal(t, 1, b.Count())

	s2.Close()
	assert.Equal(t, 0, b.Count())

	_, ok := <-s1.Events()
	assert.False(t, ok, "channel must be closed after Close")
}

func TestBus_PublishPreservesBatch(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.Root(), true)
	defer s.Close()

	pub := batch(ev(memfs.Created, "/dir/a.txt"), ev(memfs.Changed, "/dir"))
	b.Publish(pub)

	got := receive(t, s)
	assert.Equal(t, pub.ID, got.ID)
	assert.Equal(t, pub.Events, got.Events)
}

func TestBus_EmptyBatchIgnored(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.Root(), true)
	defer s.Close()

	b.Publish(memfs.ChangeBatch{ID: NewBatchID()})
	assertNoBatch(t, s)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s1 := b.Subscribe(fspath.Root(), true)
	s2 := b.Subscribe(fspath.Root(), true)
	defer s1.Close()
	defer s2.Close()

	b.Publish(batch(ev(memfs.Changed, "/shared.txt")))

	for _, s := range []*Subscription{s1, s2} {
		got := receive(t, s)
		require.Len(t, got.Events, 1)
		assert.Equal(t, "/shared.txt", got.Events[0].Path.String())
	}
}

// A consumer that does not read must not lose events, and the publisher must not block
func TestBus_SlowConsumerKeepsEverything(t *testing.T) {
	t.Parallel()

	const n = 500
	b := NewBus(1)
	s := b.Subscribe(fspath.Root(), true)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for range n {
			b.Publish(batch(ev(memfs.Changed, "/f")))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on slow consumer")
	}

	for i := range n {
		got := receive(t, s)
		require.Len(t, got.Events, 1, "batch %d", i)
	}
	assertNoBatch(t, s)
}

func TestBus_OrderAcrossBatches(t *testing.T) {
	t.Parallel()

	b := NewBus(0)
	s := b.Subscribe(fspath.Root(), true)
	defer s.Close()

	ids := make([]string, 0, 20)
	for range 20 {
		pub := batch(ev(memfs.Created, "/x"))
		ids = append(ids, pub.ID)
		b.Publish(pub)
	}
	for _, id := range ids {
		assert.Equal(t, id, receive(t, s).ID)
	}
}

func TestSubscription_NonRecursiveFilter(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.MustParse("/dir"), false)
	defer s.Close()

	b.Publish(batch(
		ev(memfs.Deleted, "/dir/sub/deep.txt"), // too deep
		ev(memfs.Deleted, "/dir/sub"),
		ev(memfs.Changed, "/dir"),
		ev(memfs.Changed, "/"),       // above
		ev(memfs.Created, "/dirx/a"), // sibling sharing a text prefix
	))

	got := receive(t, s)
	assert.Equal(t, []memfs.ChangeEvent{
		ev(memfs.Deleted, "/dir/sub"),
		ev(memfs.Changed, "/dir"),
	}, got.Events)
}

func TestSubscription_RecursiveFilter(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.MustParse("/dir"), true)
	defer s.Close()

	b.Publish(batch(ev(memfs.Changed, "/")))
	b.Publish(batch(ev(memfs.Created, "/dir/sub/deep.txt"), ev(memfs.Changed, "/other")))

	got := receive(t, s)
	assert.Equal(t, []memfs.ChangeEvent{ev(memfs.Created, "/dir/sub/deep.txt")}, got.Events)
	assertNoBatch(t, s)
}

func TestSubscription_All(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.Root(), true)

	b.Publish(batch(ev(memfs.Created, "/a"), ev(memfs.Changed, "/")))
	b.Publish(batch(ev(memfs.Deleted, "/a")))

	var got []memfs.ChangeEvent
	for e := range s.All() {
		got = append(got, e)
		if len(got) == 3 {
			break
		}
	}
	s.Close()

	assert.Equal(t, []memfs.ChangeEvent{
		ev(memfs.Created, "/a"),
		ev(memfs.Changed, "/"),
		ev(memfs.Deleted, "/a"),
	}, got)

	// after Close the sequence terminates
	for range s.All() {
		t.Fatal("no events expected after Close")
	}
}

func TestBus_Close(t *testing.T) {
	t.Parallel()

	b := NewBus(4)
	s := b.Subscribe(fspath.Root(), true)
	b.Close()

	assert.Equal(t, 0, b.Count())
	_, ok := <-s.Events()
	assert.False(t, ok)

	late := b.Subscribe(fspath.Root(), true)
	_, ok = <-late.Events()
	assert.False(t, ok, "subscriptions on a closed bus start closed")
	b.Publish(batch(ev(memfs.Created, "/a"))) // no panic
}
