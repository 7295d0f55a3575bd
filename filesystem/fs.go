// Package filesystem implements the in-memory tree engine: path resolution over
// a single rooted node graph and the read and mutation operations on it.
package filesystem

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
)

// RootIno is the identifier of the root directory
const RootIno = 1

// Publisher receives the change batch of every successful mutation
type Publisher interface {
	Publish(batch memfs.ChangeBatch)
}

type discardPublisher struct{}

func (discardPublisher) Publish(memfs.ChangeBatch) {}

// FileSystem exclusively owns the node tree. Mutations hold the tree lock for
// their whole duration; reads share it. Callers only ever receive copies.
type FileSystem struct {
	root      *Node         // Root of node tree
	lastIno   atomic.Uint64 // Last Ino assigned; incremented when new nodes are created
	nodeCount atomic.Int64  // Nodes in the tree, root included
	clock     clock
	bus       Publisher
	mu        sync.RWMutex
}

var _ memfs.FileSystem = (*FileSystem)(nil)

// NewFS creates a tree holding only the root directory. A nil bus discards events.
func NewFS(bus Publisher) *FileSystem {
	if bus == nil {
		bus = discardPublisher{}
	}
	fs := &FileSystem{bus: bus}
	fs.lastIno.Store(RootIno)
	fs.root = NewNode("", NewInode(RootIno, memfs.DirNodeType, fs.clock.Now()))
	fs.nodeCount.Store(1)
	return fs
}

// NodeCount returns the number of nodes in the tree, root included
func (fs *FileSystem) NodeCount() int64 {
	return fs.nodeCount.Load()
}

// newNode allocates a detached node with a fresh identifier
func (fs *FileSystem) newNode(name string, kind memfs.FileType) *Node {
	return NewNode(name, NewInode(fs.lastIno.Add(1), kind, fs.clock.Now()))
}

// lookupLocked resolves p from the root. Caller must hold fs.mu.
func (fs *FileSystem) lookupLocked(op string, p fspath.Path) (*Node, error) {
	cur := fs.root
	for _, seg := range p.Segments() {
		if !cur.IsDir() {
			return nil, memfs.NewError(memfs.KindNotADirectory, op, p)
		}
		child, ok := cur.GetChild(seg)
		if !ok {
			return nil, memfs.NewError(memfs.KindNotFound, op, p)
		}
		cur = child
	}
	return cur, nil
}

// parentDirLocked resolves the directory that holds p. Caller must hold fs.mu.
func (fs *FileSystem) parentDirLocked(op string, p fspath.Path) (*Node, error) {
	parent, err := fs.lookupLocked(op, p.Parent())
	if err != nil {
		return nil, err
	}
	if !parent.IsDir() {
		return nil, memfs.NewError(memfs.KindNotADirectory, op, p.Parent())
	}
	return parent, nil
}

// Lookup returns a snapshot of the node at p
func (fs *FileSystem) Lookup(p fspath.Path) (memfs.NodeInfo, error) {
	ctx := fs.beginRead("lookup", p)
	defer ctx.Close()

	n, err := fs.lookupLocked(ctx.op, p)
	if err != nil {
		return nil, ctx.fail(err)
	}
	return n.snapshot(), nil
}

// Stat returns the metadata of the node at p. Directories report size 0.
func (fs *FileSystem) Stat(p fspath.Path) (memfs.FileStat, error) {
	ctx := fs.beginRead("stat", p)
	defer ctx.Close()

	n, err := fs.lookupLocked(ctx.op, p)
	if err != nil {
		return memfs.FileStat{}, ctx.fail(err)
	}
	return n.Stat(), nil
}

// ReadDirectory lists the direct children of the directory at p sorted by name
func (fs *FileSystem) ReadDirectory(p fspath.Path) ([]memfs.DirEntry, error) {
	ctx := fs.beginRead("readDirectory", p)
	defer ctx.Close()

	n, err := fs.lookupLocked(ctx.op, p)
	if err != nil {
		return nil, ctx.fail(err)
	}
	if !n.IsDir() {
		return nil, ctx.failKind(memfs.KindNotADirectory, p)
	}

	children := n.SortedChildren()
	entries := make([]memfs.DirEntry, 0, len(children))
	for _, ch := range children {
		entries = append(entries, memfs.DirEntry{Name: ch.name, Type: ch.Kind()})
	}
	return entries, nil
}

// ReadFile returns a copy of the content of the file at p
func (fs *FileSystem) ReadFile(p fspath.Path) ([]byte, error) {
	ctx := fs.beginRead("readFile", p)
	defer ctx.Close()

	n, err := fs.lookupLocked(ctx.op, p)
	if err != nil {
		return nil, ctx.fail(err)
	}
	if n.IsDir() {
		return nil, ctx.failKind(memfs.KindIsADirectory, p)
	}
	return n.Content(), nil
}

// Walk calls fn for p and every node below it, depth-first with parents before
// children and siblings by name. fn runs under the read lock and must not call
// back into the FileSystem. A non-nil error from fn stops the walk.
func (fs *FileSystem) Walk(p fspath.Path, fn func(p fspath.Path, stat memfs.FileStat) error) error {
	ctx := fs.beginRead("walk", p)
	defer ctx.Close()

	n, err := fs.lookupLocked(ctx.op, p)
	if err != nil {
		return ctx.fail(err)
	}
	return walkLocked(n, p, fn)
}

func walkLocked(n *Node, p fspath.Path, fn func(fspath.Path, memfs.FileStat) error) error {
	if err := fn(p, n.Stat()); err != nil {
		return err
	}
	for _, ch := range n.SortedChildren() {
		if err := walkLocked(ch, p.Join(ch.name), fn); err != nil {
			return err
		}
	}
	return nil
}

// AddDirNode creates every missing directory of req.Path and returns the leaf.
// It is equivalent to calling `mkdir -p` from a shell and similarly will only create
// directories that do not already exist and will not error if the leaf already exists.
func (fs *FileSystem) AddDirNode(req *memfs.DirCreateRequest) (memfs.NodeInfo, error) {
	p, err := fspath.Parse(req.Path)
	if err != nil {
		return nil, fmt.Errorf("dir request %q: %w", req.Path, err)
	}
	ctx := fs.beginWrite("addDirNode", p)
	defer ctx.Close()

	dir, err := fs.mkdirAllLocked(ctx, p)
	if err != nil {
		return nil, ctx.fail(err)
	}
	return dir.snapshot(), nil
}

// AddFileNode creates a file at req.Path, adding any missing directories on the
// way. It fails with FileExists if a node already exists at the path.
func (fs *FileSystem) AddFileNode(req *memfs.FileCreateRequest) (memfs.NodeInfo, error) {
	p, err := fspath.Parse(req.Path)
	if err != nil {
		return nil, fmt.Errorf("file request %q: %w", req.Path, err)
	}
	ctx := fs.beginWrite("addFileNode", p)
	defer ctx.Close()

	if p.IsRoot() {
		return nil, ctx.failKind(memfs.KindIsADirectory, p)
	}
	if existing, err := fs.lookupLocked(ctx.op, p); err == nil {
		if existing.IsDir() {
			return nil, ctx.failKind(memfs.KindIsADirectory, p)
		}
		return nil, ctx.failKind(memfs.KindFileExists, p)
	}

	parent, err := fs.mkdirAllLocked(ctx, p.Parent())
	if err != nil {
		return nil, ctx.fail(err)
	}
	file := fs.newNode(p.Base(), memfs.FileNodeType)
	file.setContent(req.Content, file.mtime)
	fs.attachLocked(ctx, parent, p, file)
	return file.snapshot(), nil
}

// mkdirAllLocked walks p creating missing directories. All segments are checked
// before anything is created so a file in the way leaves the tree untouched.
func (fs *FileSystem) mkdirAllLocked(ctx *OpContext, p fspath.Path) (*Node, error) {
	segs := p.Segments()
	cur := fs.root
	depth := 0
	for ; depth < len(segs); depth++ {
		child, ok := cur.GetChild(segs[depth])
		if !ok {
			break
		}
		if !child.IsDir() {
			return nil, memfs.NewError(memfs.KindNotADirectory, ctx.op, p)
		}
		cur = child
	}

	curPath := fspath.Root()
	for _, seg := range segs[:depth] {
		curPath = curPath.Join(seg)
	}
	for _, seg := range segs[depth:] {
		curPath = curPath.Join(seg)
		dir := fs.newNode(seg, memfs.DirNodeType)
		fs.attachLocked(ctx, cur, curPath, dir)
		cur = dir
	}
	return cur, nil
}

// attachLocked links a freshly created node under parent and records the events
func (fs *FileSystem) attachLocked(ctx *OpContext, parent *Node, p fspath.Path, n *Node) {
	parent.AddChild(n)
	parent.touch(fs.clock.Now())
	fs.nodeCount.Add(n.SubtreeSize())
	ctx.emitCreated(n, p)
	ctx.dirChanged(p.Parent())
}

// detachLocked unlinks the child at p from parent and records the events
func (fs *FileSystem) detachLocked(ctx *OpContext, parent *Node, p fspath.Path) *Node {
	n, ok := parent.RemoveChild(p.Base())
	if !ok {
		return nil
	}
	parent.touch(fs.clock.Now())
	fs.nodeCount.Add(-n.SubtreeSize())
	ctx.emitDeleted(n, p)
	ctx.dirChanged(p.Parent())
	return n
}
