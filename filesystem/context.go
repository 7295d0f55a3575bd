package filesystem

import (
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/events"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/brettbedarf/memfs/internal/metrics"
	"github.com/brettbedarf/memfs/internal/util"
)

type eventKey struct {
	typ  memfs.ChangeType
	path string
}

// OpContext tracks a single engine operation: the tree lock it holds, the change
// events it produces and its outcome.
// Calling OpContext.Close() publishes the collected events and then unwinds all
// unlocking/cleanup callbacks in reverse order.
//
// NOTE: OpContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type OpContext struct {
	op       string
	fs       *FileSystem
	logger   util.Logger
	start    time.Time
	err      error
	events   []memfs.ChangeEvent
	parents  []fspath.Path // directories whose child set changed, in first-touch order
	seen     map[eventKey]struct{}
	closeFns []func()
}

func newOpContext(fs *FileSystem, op string, p fspath.Path) *OpContext {
	logger := util.GetLogger("FS." + op).With().Stringer("path", p).Logger()
	logger.Trace().Msg(op + " called")
	return &OpContext{
		op:     op,
		fs:     fs,
		logger: logger,
		start:  time.Now(),
		seen:   make(map[eventKey]struct{}),
	}
}

// beginRead read-locks the tree for op
func (fs *FileSystem) beginRead(op string, p fspath.Path) *OpContext {
	ctx := newOpContext(fs, op, p)
	fs.mu.RLock()
	ctx.AddClose(fs.mu.RUnlock)
	return ctx
}

// beginWrite write-locks the tree for op. Events are published before the lock
// is released so batches reach the bus in commit order.
func (fs *FileSystem) beginWrite(op string, p fspath.Path) *OpContext {
	ctx := newOpContext(fs, op, p)
	fs.mu.Lock()
	ctx.AddClose(fs.mu.Unlock)
	ctx.AddClose(ctx.publish)
	return ctx
}

// withTarget adds the second path of two-path operations to the log context
func (ctx *OpContext) withTarget(dst fspath.Path) *OpContext {
	ctx.logger = ctx.logger.With().Stringer("target", dst).Logger()
	return ctx
}

// emit records a node event; duplicates within the operation are ignored
func (ctx *OpContext) emit(typ memfs.ChangeType, p fspath.Path) {
	key := eventKey{typ: typ, path: p.String()}
	if _, ok := ctx.seen[key]; ok {
		return
	}
	ctx.seen[key] = struct{}{}
	ctx.events = append(ctx.events, memfs.ChangeEvent{Type: typ, Path: p})
}

// dirChanged records that the child set of directory p changed
func (ctx *OpContext) dirChanged(p fspath.Path) {
	for _, seen := range ctx.parents {
		if seen.Equal(p) {
			return
		}
	}
	ctx.parents = append(ctx.parents, p)
}

// emitDeleted records Deleted events for n's subtree rooted at p, children
// (by name) before their parent
func (ctx *OpContext) emitDeleted(n *Node, p fspath.Path) {
	for _, ch := range n.SortedChildren() {
		ctx.emitDeleted(ch, p.Join(ch.name))
	}
	ctx.emit(memfs.Deleted, p)
}

// emitCreated records Created events for n's subtree rooted at p, parent first
func (ctx *OpContext) emitCreated(n *Node, p fspath.Path) {
	ctx.emit(memfs.Created, p)
	for _, ch := range n.SortedChildren() {
		ctx.emitCreated(ch, p.Join(ch.name))
	}
}

// fail records err as the operation outcome and returns it
func (ctx *OpContext) fail(err error) error {
	ctx.err = err
	return err
}

// failKind is fail for a new [*memfs.Error] about p
func (ctx *OpContext) failKind(kind memfs.ErrorKind, p fspath.Path) error {
	return ctx.fail(memfs.NewError(kind, ctx.op, p))
}

// publish sends node events followed by directory Changed events as one batch
func (ctx *OpContext) publish() {
	if ctx.err != nil {
		return
	}
	for _, p := range ctx.parents {
		if _, deleted := ctx.seen[eventKey{typ: memfs.Deleted, path: p.String()}]; deleted {
			continue
		}
		ctx.emit(memfs.Changed, p)
	}
	if len(ctx.events) == 0 {
		return
	}
	ctx.fs.bus.Publish(memfs.ChangeBatch{ID: events.NewBatchID(), Events: ctx.events})
}

// AddClose pushes a cleanup callback (e.g., unlock) onto the end of the stack.
func (ctx *OpContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order and records the outcome.
// Safe to call even if ctx is nil; it is a no-op in that case, so you can
// `defer ctx.Close()` unconditionally.
//
// Example:
//
//	ctx := fs.beginWrite("delete", p)
//	defer ctx.Close()
func (ctx *OpContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil

	result := metrics.ResultOK
	if ctx.err != nil {
		result = memfs.KindOf(ctx.err).String()
		ctx.logger.Debug().Err(ctx.err).Msg(ctx.op + " rejected")
	} else if len(ctx.events) > 0 {
		ctx.logger.Debug().Int("events", len(ctx.events)).Msg(ctx.op + " applied")
	}
	metrics.RecordOperation(ctx.op, result, time.Since(ctx.start))
	metrics.SetTreeNodes(ctx.fs.NodeCount())
}
