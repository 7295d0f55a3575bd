package filesystem

import (
	"testing"
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	t.Parallel()

	now := time.Now()
	file := NewNode("file.txt", NewInode(2, memfs.FileNodeType, now))
	assert.Equal(t, "file.txt", file.Name())
	assert.Nil(t, file.children)
	assert.Equal(t, 0, file.ChildCount())
	assert.Nil(t, file.SortedChildren())

	dir := NewNode("dir", NewInode(3, memfs.DirNodeType, now))
	assert.NotNil(t, dir.children)
	assert.True(t, dir.IsDir())
	assert.Equal(t, now, dir.Stat().Ctime)
	assert.Equal(t, now, dir.Stat().Mtime)
}

func TestNode_Children(t *testing.T) {
	t.Parallel()

	now := time.Now()
	dir := NewNode("dir", NewInode(1, memfs.DirNodeType, now))
	sub := NewNode("sub", NewInode(2, memfs.DirNodeType, now))
	dir.AddChild(NewNode("b", NewInode(3, memfs.FileNodeType, now)))
	dir.AddChild(NewNode("a", NewInode(4, memfs.FileNodeType, now)))
	dir.AddChild(sub)
	sub.AddChild(NewNode("c", NewInode(5, memfs.FileNodeType, now)))

	assert.Equal(t, 3, dir.ChildCount())
	assert.Equal(t, int64(5), dir.SubtreeSize())

	names := []string{}
	for _, ch := range dir.SortedChildren() {
		names = append(names, ch.Name())
	}
	assert.Equal(t, []string{"a", "b", "sub"}, names)

	got, ok := dir.GetChild("sub")
	require.True(t, ok)
	assert.Same(t, sub, got)

	removed, ok := dir.RemoveChild("sub")
	require.True(t, ok)
	assert.Same(t, sub, removed)
	_, ok = dir.RemoveChild("sub")
	assert.False(t, ok)
	assert.Equal(t, int64(3), dir.SubtreeSize())

	file, _ := dir.GetChild("a")
	_, ok = file.GetChild("anything")
	assert.False(t, ok)
	_, ok = file.RemoveChild("anything")
	assert.False(t, ok)
}

func TestNode_Snapshot(t *testing.T) {
	t.Parallel()

	n := NewNode("f", NewInode(9, memfs.FileNodeType, time.Now()))
	n.setContent([]byte("abc"), time.Now())

	snap := n.snapshot()
	n.setContent([]byte("abcdef"), time.Now())

	assert.Equal(t, "f", snap.Name())
	assert.Equal(t, uint64(9), snap.Ino())
	assert.Equal(t, int64(3), snap.Stat().Size, "snapshot is detached from later writes")
}

func TestInode_Content(t *testing.T) {
	t.Parallel()

	created := time.Now()
	ino := NewInode(7, memfs.FileNodeType, created)
	assert.NotNil(t, ino.Content(), "empty files read as an empty, non-nil buffer")
	assert.Equal(t, int64(0), ino.Size())

	later := created.Add(time.Second)
	ino.setContent([]byte("hello"), later)
	assert.Equal(t, int64(5), ino.Size())
	assert.Equal(t, later, ino.Stat().Mtime)
	assert.Equal(t, created, ino.Stat().Ctime)
}

func TestClock_StrictlyIncreasing(t *testing.T) {
	t.Parallel()

	var c clock
	prev := c.Now()
	for range 10_000 {
		next := c.Now()
		require.True(t, next.After(prev), "%v not after %v", next, prev)
		prev = next
	}
}

func TestClock_StepsOverFutureStamp(t *testing.T) {
	t.Parallel()

	var c clock
	future := time.Now().Add(time.Hour).UnixNano()
	c.last.Store(future)

	assert.Equal(t, future+1, c.Now().UnixNano())
}
