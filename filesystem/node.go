package filesystem

import (
	"cmp"
	"slices"

	"github.com/brettbedarf/memfs"
	"github.com/puzpuzpuz/xsync/v4"
)

// Node places an Inode in the tree under a name. Directories own their children
// exclusively; there are no parent references.
type Node struct {
	name     string                    // Name of the node (last part of the path)
	children *xsync.Map[string, *Node] // child nodes by name; nil for files
	*Inode
}

// NewNode creates a detached Node. Directory inodes get an empty children map.
//
// NOTE: Parent node is responsible for linking the returned Node with AddChild
func NewNode(name string, inode *Inode) *Node {
	n := &Node{
		Inode: inode,
		name:  name,
	}
	if inode.IsDir() {
		n.children = xsync.NewMap[string, *Node]()
	}
	return n
}

// Name returns the node's name; "" for the root
func (n *Node) Name() string {
	return n.name
}

// AddChild stores child under its name, replacing any existing entry
func (n *Node) AddChild(child *Node) {
	n.children.Store(child.name, child)
}

// GetChild returns a child node; always false for files
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children.Load(name)
}

// RemoveChild detaches and returns the named child
func (n *Node) RemoveChild(name string) (*Node, bool) {
	if n.children == nil {
		return nil, false
	}
	return n.children.LoadAndDelete(name)
}

// ChildCount returns the number of direct children
func (n *Node) ChildCount() int {
	if n.children == nil {
		return 0
	}
	return n.children.Size()
}

// SortedChildren returns the direct children ordered by name
func (n *Node) SortedChildren() []*Node {
	if n.children == nil {
		return nil
	}
	children := make([]*Node, 0, n.children.Size())
	n.children.Range(func(_ string, ch *Node) bool {
		children = append(children, ch)
		return true
	})
	slices.SortFunc(children, func(a, b *Node) int {
		return cmp.Compare(a.name, b.name)
	})
	return children
}

// SubtreeSize counts n and all of its descendants
func (n *Node) SubtreeSize() int64 {
	size := int64(1)
	if n.children == nil {
		return size
	}
	n.children.Range(func(_ string, ch *Node) bool {
		size += ch.SubtreeSize()
		return true
	})
	return size
}

// info is a detached snapshot handed to callers instead of the live Node
type info struct {
	name string
	stat memfs.FileStat
}

func (n *Node) snapshot() memfs.NodeInfo {
	return info{name: n.name, stat: n.Stat()}
}

func (i info) Name() string { return i.name }

func (i info) Ino() uint64 { return i.stat.Ino }

func (i info) Stat() memfs.FileStat { return i.stat }

var _ memfs.NodeInfo = info{}
