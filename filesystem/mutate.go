package filesystem

import (
	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
)

// CreateDirectory creates an empty directory at p. The parent must already exist.
func (fs *FileSystem) CreateDirectory(p fspath.Path) error {
	ctx := fs.beginWrite("createDirectory", p)
	defer ctx.Close()

	if p.IsRoot() {
		return ctx.failKind(memfs.KindFileExists, p)
	}
	parent, err := fs.parentDirLocked(ctx.op, p)
	if err != nil {
		return ctx.fail(err)
	}
	if _, exists := parent.GetChild(p.Base()); exists {
		return ctx.failKind(memfs.KindFileExists, p)
	}

	fs.attachLocked(ctx, parent, p, fs.newNode(p.Base(), memfs.DirNodeType))
	return nil
}

// WriteFile creates or replaces the file at p according to opts. See [memfs.WriteOptions].
// The parent directory must already exist.
func (fs *FileSystem) WriteFile(p fspath.Path, content []byte, opts memfs.WriteOptions) error {
	ctx := fs.beginWrite("writeFile", p)
	defer ctx.Close()

	if p.IsRoot() {
		return ctx.failKind(memfs.KindIsADirectory, p)
	}
	parent, err := fs.parentDirLocked(ctx.op, p)
	if err != nil {
		return ctx.fail(err)
	}

	if existing, exists := parent.GetChild(p.Base()); exists {
		switch {
		case existing.IsDir():
			return ctx.failKind(memfs.KindIsADirectory, p)
		case !opts.Overwrite:
			return ctx.failKind(memfs.KindFileExists, p)
		}
		existing.setContent(content, fs.clock.Now())
		ctx.emit(memfs.Changed, p)
		return nil
	}

	if !opts.Create {
		return ctx.failKind(memfs.KindNotFound, p)
	}
	file := fs.newNode(p.Base(), memfs.FileNodeType)
	file.setContent(content, file.mtime)
	fs.attachLocked(ctx, parent, p, file)
	return nil
}

// Delete removes the node at p. A non-empty directory is only removed, with its
// whole subtree, when opts.Recursive is set; otherwise it fails with NotEmpty.
func (fs *FileSystem) Delete(p fspath.Path, opts memfs.DeleteOptions) error {
	ctx := fs.beginWrite("delete", p)
	defer ctx.Close()

	if p.IsRoot() {
		return ctx.failKind(memfs.KindNoPermissions, p)
	}
	parent, err := fs.parentDirLocked(ctx.op, p)
	if err != nil {
		return ctx.fail(err)
	}
	n, exists := parent.GetChild(p.Base())
	if !exists {
		return ctx.failKind(memfs.KindNotFound, p)
	}
	if n.ChildCount() > 0 && !opts.Recursive {
		return ctx.failKind(memfs.KindNotEmpty, p)
	}

	fs.detachLocked(ctx, parent, p)
	return nil
}

// Rename moves the node at src to dst keeping its identity and ctime; its mtime
// advances. An existing dst is destroyed first when opts.Overwrite is set.
func (fs *FileSystem) Rename(src, dst fspath.Path, opts memfs.RenameOptions) error {
	ctx := fs.beginWrite("rename", src).withTarget(dst)
	defer ctx.Close()

	if src.IsRoot() {
		return ctx.failKind(memfs.KindNoPermissions, src)
	}
	mv, err := fs.prepareTransferLocked(ctx, src, dst, opts.Overwrite)
	if err != nil {
		return ctx.fail(err)
	}

	if mv.replaced {
		fs.detachLocked(ctx, mv.dstParent, dst)
	}
	n, _ := mv.srcParent.RemoveChild(src.Base())
	mv.srcParent.touch(fs.clock.Now())
	ctx.emit(memfs.Deleted, src)
	ctx.dirChanged(src.Parent())

	n.name = dst.Base()
	n.touch(fs.clock.Now())
	mv.dstParent.AddChild(n)
	mv.dstParent.touch(fs.clock.Now())
	ctx.emit(memfs.Created, dst)
	ctx.dirChanged(dst.Parent())
	return nil
}

// Copy inserts a deep duplicate of the node at src at dst. The duplicate gets
// fresh identifiers, timestamps and content buffers; src is left untouched.
// An existing dst is destroyed first when opts.Overwrite is set.
func (fs *FileSystem) Copy(src, dst fspath.Path, opts memfs.CopyOptions) error {
	ctx := fs.beginWrite("copy", src).withTarget(dst)
	defer ctx.Close()

	cp, err := fs.prepareTransferLocked(ctx, src, dst, opts.Overwrite)
	if err != nil {
		return ctx.fail(err)
	}

	dup := fs.cloneLocked(cp.node, dst.Base())
	if cp.replaced {
		fs.detachLocked(ctx, cp.dstParent, dst)
	}
	fs.attachLocked(ctx, cp.dstParent, dst, dup)
	return nil
}

// transfer is the validated plan shared by Rename and Copy
type transfer struct {
	node      *Node
	srcParent *Node
	dstParent *Node
	replaced  bool // dst exists and will be destroyed
}

// prepareTransferLocked runs every check of a rename or copy before anything is
// modified: src exists, dst is not src or below it, dst's parent is a directory,
// and an existing dst may be overwritten without destroying src.
func (fs *FileSystem) prepareTransferLocked(ctx *OpContext, src, dst fspath.Path, overwrite bool) (*transfer, error) {
	n, err := fs.lookupLocked(ctx.op, src)
	if err != nil {
		return nil, err
	}
	if dst.HasPrefix(src) {
		return nil, memfs.NewError(memfs.KindInvalidTarget, ctx.op, dst)
	}
	dstParent, err := fs.parentDirLocked(ctx.op, dst)
	if err != nil {
		return nil, err
	}

	t := &transfer{node: n, dstParent: dstParent}
	if !src.IsRoot() {
		// src's parent is known to resolve since src did
		t.srcParent, _ = fs.lookupLocked(ctx.op, src.Parent())
	}
	if _, exists := dstParent.GetChild(dst.Base()); exists {
		if !overwrite {
			return nil, memfs.NewError(memfs.KindFileExists, ctx.op, dst)
		}
		if src.HasPrefix(dst) {
			// replacing an ancestor of src would destroy src itself
			return nil, memfs.NewError(memfs.KindInvalidTarget, ctx.op, dst)
		}
		t.replaced = true
	}
	return t, nil
}

// cloneLocked deep copies n under a new name with fresh identifiers and timestamps
func (fs *FileSystem) cloneLocked(n *Node, name string) *Node {
	dup := fs.newNode(name, n.Kind())
	if !n.IsDir() {
		dup.data = n.Content()
		return dup
	}
	for _, ch := range n.SortedChildren() {
		dup.AddChild(fs.cloneLocked(ch, ch.name))
	}
	return dup
}
