// Package provider adapts the tree engine to the host editor's file system
// provider contract: URIs in, host stats and host error codes out.
package provider

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/events"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/brettbedarf/memfs/internal/metrics"
	"github.com/brettbedarf/memfs/internal/util"
)

// Watchable is the event source behind [Provider.Watch]
type Watchable interface {
	Subscribe(root fspath.Path, recursive bool) *events.Subscription
}

// Provider serves one URI scheme from a [memfs.FileSystem]. It converts
// between host and engine vocabulary and performs no tree logic itself.
type Provider struct {
	scheme string
	fs     memfs.FileSystem
	watch  Watchable
	opts   Options
}

// New creates a Provider for scheme. watch may be nil, in which case Watch
// fails with Unavailable.
func New(scheme string, fs memfs.FileSystem, watch Watchable, opts Options) *Provider {
	opts.IsCaseSensitive = true
	return &Provider{
		scheme: scheme,
		fs:     fs,
		watch:  watch,
		opts:   opts,
	}
}

// Scheme returns the URI scheme served
func (p *Provider) Scheme() string {
	return p.scheme
}

// Options returns the capabilities the provider registers with
func (p *Provider) Options() Options {
	return p.opts
}

// Root returns the URI of the root directory
func (p *Provider) Root() URI {
	return URI{Scheme: p.scheme, Path: fspath.Root()}
}

// resolve rejects URIs of other schemes
func (p *Provider) resolve(op string, uri URI) (fspath.Path, error) {
	if uri.Scheme != p.scheme {
		return fspath.Path{}, &FileSystemError{
			Code: Unavailable,
			URI:  uri,
			Err:  fmt.Errorf("%s: %w: %q", op, ErrUnknownScheme, uri.Scheme),
		}
	}
	return uri.Path, nil
}

// writable resolves uri for a mutation, honoring IsReadonly
func (p *Provider) writable(op string, uri URI) (fspath.Path, error) {
	path, err := p.resolve(op, uri)
	if err != nil {
		return path, err
	}
	if p.opts.IsReadonly {
		return path, &FileSystemError{Code: NoPermissions, URI: uri, Err: fmt.Errorf("%s: %w", op, ErrReadOnly)}
	}
	return path, nil
}

// hostError converts an engine error. The URI reported is the path the engine
// rejected, falling back to uri.
func (p *Provider) hostError(op string, uri URI, err error) error {
	var fe *FileSystemError
	if errors.As(err, &fe) {
		return fe
	}
	var me *memfs.Error
	if errors.As(err, &me) {
		uri = URI{Scheme: p.scheme, Path: me.Path}
	}
	hostErr := &FileSystemError{Code: codeFor(memfs.KindOf(err)), URI: uri, Err: err}

	logger := util.GetLogger("Provider")
	logger.Debug().Str("op", op).Str("code", string(hostErr.Code)).Stringer("uri", uri).Err(err).Msg("Operation failed")
	return hostErr
}

// Stat returns the metadata of the node at uri
func (p *Provider) Stat(uri URI) (FileStat, error) {
	path, err := p.resolve("stat", uri)
	if err != nil {
		return FileStat{}, err
	}
	st, err := p.fs.Stat(path)
	if err != nil {
		return FileStat{}, p.hostError("stat", uri, err)
	}
	return toHostStat(st), nil
}

// ReadDirectory lists the direct children of the directory at uri
func (p *Provider) ReadDirectory(uri URI) ([]DirEntry, error) {
	path, err := p.resolve("readDirectory", uri)
	if err != nil {
		return nil, err
	}
	entries, err := p.fs.ReadDirectory(path)
	if err != nil {
		return nil, p.hostError("readDirectory", uri, err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name, Type: toHostType(e.Type)})
	}
	return out, nil
}

// Walk calls fn for uri and every node below it, parents before children and
// siblings by name. An error from fn stops the walk and is returned unchanged.
func (p *Provider) Walk(uri URI, fn func(uri URI, stat FileStat) error) error {
	path, err := p.resolve("walk", uri)
	if err != nil {
		return err
	}
	var stopped error
	err = p.fs.Walk(path, func(np fspath.Path, st memfs.FileStat) error {
		if err := fn(URI{Scheme: p.scheme, Path: np}, toHostStat(st)); err != nil {
			stopped = err
			return err
		}
		return nil
	})
	if stopped != nil {
		return stopped
	}
	if err != nil {
		return p.hostError("walk", uri, err)
	}
	return nil
}

// ReadFile returns a copy of the content of the file at uri
func (p *Provider) ReadFile(uri URI) ([]byte, error) {
	path, err := p.resolve("readFile", uri)
	if err != nil {
		return nil, err
	}
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return nil, p.hostError("readFile", uri, err)
	}
	metrics.AddBytesRead(len(data))
	return data, nil
}

// WriteFile creates or replaces the file at uri. See [memfs.WriteOptions].
func (p *Provider) WriteFile(uri URI, content []byte, opts memfs.WriteOptions) error {
	path, err := p.writable("writeFile", uri)
	if err != nil {
		return err
	}
	if err := p.fs.WriteFile(path, content, opts); err != nil {
		return p.hostError("writeFile", uri, err)
	}
	metrics.AddBytesWritten(len(content))
	return nil
}

// CreateDirectory creates an empty directory at uri
func (p *Provider) CreateDirectory(uri URI) error {
	path, err := p.writable("createDirectory", uri)
	if err != nil {
		return err
	}
	if err := p.fs.CreateDirectory(path); err != nil {
		return p.hostError("createDirectory", uri, err)
	}
	return nil
}

// Rename moves the node at src to dst
func (p *Provider) Rename(src, dst URI, opts memfs.RenameOptions) error {
	srcPath, err := p.writable("rename", src)
	if err != nil {
		return err
	}
	dstPath, err := p.resolve("rename", dst)
	if err != nil {
		return err
	}
	if err := p.fs.Rename(srcPath, dstPath, opts); err != nil {
		return p.hostError("rename", src, err)
	}
	return nil
}

// Copy duplicates the node at src to dst
func (p *Provider) Copy(src, dst URI, opts memfs.CopyOptions) error {
	srcPath, err := p.resolve("copy", src)
	if err != nil {
		return err
	}
	dstPath, err := p.writable("copy", dst)
	if err != nil {
		return err
	}
	if err := p.fs.Copy(srcPath, dstPath, opts); err != nil {
		return p.hostError("copy", src, err)
	}
	return nil
}

// Delete removes the node at uri. See [memfs.DeleteOptions].
func (p *Provider) Delete(uri URI, opts memfs.DeleteOptions) error {
	path, err := p.writable("delete", uri)
	if err != nil {
		return err
	}
	if err := p.fs.Delete(path, opts); err != nil {
		return p.hostError("delete", uri, err)
	}
	return nil
}

// Watch subscribes to changes at uri. The target need not exist.
// The returned Watcher must be disposed by the caller.
func (p *Provider) Watch(uri URI, opts WatchOptions) (*Watcher, error) {
	path, err := p.resolve("watch", uri)
	if err != nil {
		return nil, err
	}
	if p.watch == nil {
		return nil, &FileSystemError{Code: Unavailable, URI: uri, Err: errors.New("watch: no event source")}
	}
	return newWatcher(p.scheme, p.watch.Subscribe(path, opts.Recursive)), nil
}
