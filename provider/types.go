package provider

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
)

// ErrInvalidURI is returned by ParseURI for anything but an absolute `scheme:/path`
var ErrInvalidURI = errors.New("invalid uri")

// URI addresses a node of a provider: `scheme:/seg/seg`
type URI struct {
	Scheme string
	Path   fspath.Path
}

// ParseURI parses a `scheme:/a/b` URI. The escaped path is split on `/` before
// each segment is decoded, so `%2F` stays part of a name. The result is
// normalized as by [fspath.Parse]. `scheme:/` is the root.
func ParseURI(raw string) (URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URI{}, fmt.Errorf("%w %q: %w", ErrInvalidURI, raw, err)
	}
	switch {
	case u.Scheme == "":
		return URI{}, fmt.Errorf("%w %q: missing scheme", ErrInvalidURI, raw)
	case u.Opaque != "":
		return URI{}, fmt.Errorf("%w %q: path must be absolute", ErrInvalidURI, raw)
	case u.Host != "" || u.User != nil:
		return URI{}, fmt.Errorf("%w %q: authority is not supported", ErrInvalidURI, raw)
	}

	var segs []string
	for seg := range strings.SplitSeq(u.EscapedPath(), fspath.Separator) {
		name, err := url.PathUnescape(seg)
		if err != nil {
			return URI{}, fmt.Errorf("%w %q: %w", ErrInvalidURI, raw, err)
		}
		segs = append(segs, name)
	}
	p, err := fspath.FromSegments(segs...)
	if err != nil {
		return URI{}, fmt.Errorf("%w %q: %w", ErrInvalidURI, raw, err)
	}
	return URI{Scheme: u.Scheme, Path: p}, nil
}

// MustParseURI is ParseURI that panics on error
func MustParseURI(raw string) URI {
	u, err := ParseURI(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// Join returns the URI of the child name below u
func (u URI) Join(name string) URI {
	return URI{Scheme: u.Scheme, Path: u.Path.Join(name)}
}

// segmentEscaper escapes what ParseURI would otherwise read as a separator or an escape
var segmentEscaper = strings.NewReplacer("%", "%25", fspath.Separator, "%2F")

// String renders u so that ParseURI reads back the same URI
func (u URI) String() string {
	segs := u.Path.Segments()
	for i, seg := range segs {
		segs[i] = segmentEscaper.Replace(seg)
	}
	return u.Scheme + ":" + fspath.Separator + strings.Join(segs, fspath.Separator)
}

// FileType is the host's node type
type FileType int

const (
	Unknown   FileType = 0
	File      FileType = 1
	Directory FileType = 2
)

func (t FileType) String() string {
	switch t {
	case File:
		return "File"
	case Directory:
		return "Directory"
	default:
		return "Unknown"
	}
}

func toHostType(t memfs.FileType) FileType {
	switch t {
	case memfs.FileNodeType:
		return File
	case memfs.DirNodeType:
		return Directory
	default:
		return Unknown
	}
}

// FileStat is node metadata as the host expects it. Times are unix milliseconds.
type FileStat struct {
	Type  FileType
	Ctime int64
	Mtime int64
	Size  int64
}

func toHostStat(st memfs.FileStat) FileStat {
	return FileStat{
		Type:  toHostType(st.Type),
		Ctime: st.Ctime.UnixMilli(),
		Mtime: st.Mtime.UnixMilli(),
		Size:  st.Size,
	}
}

// DirEntry is one element of a directory listing
type DirEntry struct {
	Name string
	Type FileType
}

// FileChangeType is the host's change event kind
type FileChangeType int

const (
	FileChanged FileChangeType = 1
	FileCreated FileChangeType = 2
	FileDeleted FileChangeType = 3
)

func (t FileChangeType) String() string {
	switch t {
	case FileChanged:
		return "Changed"
	case FileCreated:
		return "Created"
	case FileDeleted:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// FileChangeEvent reports a change to the node at URI
type FileChangeEvent struct {
	Type FileChangeType
	URI  URI
}

func toHostChange(t memfs.ChangeType) FileChangeType {
	switch t {
	case memfs.Created:
		return FileCreated
	case memfs.Deleted:
		return FileDeleted
	default:
		return FileChanged
	}
}

// WatchOptions controls the scope of [Provider.Watch]
type WatchOptions struct {
	Recursive bool
}

// Options are the capabilities a provider registers with
type Options struct {
	IsCaseSensitive bool // always true; names are compared byte-wise
	IsReadonly      bool // reject every mutation with NoPermissions
}
