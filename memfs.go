// Package memfs contains the core domain types shared by the in-memory file
// system engine, its event bus and the host provider facade.
package memfs

import (
	"time"

	"github.com/brettbedarf/memfs/fspath"
)

// FileType discriminates between the two node variants
type FileType uint8

const (
	UnknownType FileType = iota
	FileNodeType
	DirNodeType
)

func (t FileType) String() string {
	switch t {
	case FileNodeType:
		return "file"
	case DirNodeType:
		return "dir"
	default:
		return "unknown"
	}
}

// FileStat is a snapshot of a node's metadata. Size is always 0 for directories.
type FileStat struct {
	Type  FileType
	Size  int64
	Ctime time.Time // Created at
	Mtime time.Time // Last modified at
	Ino   uint64    // Process-unique identifier, only meaningful for reporting
}

// DirEntry is a single direct child returned from a directory listing
type DirEntry struct {
	Name string
	Type FileType
}

// WriteOptions controls [FileSystem.WriteFile] when the target is missing or present.
//
//	exists | Create | Overwrite | outcome
//	no     | false  | -         | ErrNotFound
//	no     | true   | -         | file created
//	file   | -      | false     | ErrFileExists
//	file   | -      | true      | content replaced
//	dir    | -      | -         | ErrIsADirectory
type WriteOptions struct {
	Create    bool
	Overwrite bool
}

// RenameOptions controls whether an existing target is replaced
type RenameOptions struct {
	Overwrite bool
}

// CopyOptions controls whether an existing target is replaced
type CopyOptions struct {
	Overwrite bool
}

// DeleteOptions controls deletion of non-empty directories. Files and empty
// directories are deleted regardless of Recursive.
type DeleteOptions struct {
	Recursive bool
}

// FileSystem is the operation set of the tree engine as consumed by the provider facade
type FileSystem interface {
	Stat(p fspath.Path) (FileStat, error)
	ReadDirectory(p fspath.Path) ([]DirEntry, error)
	ReadFile(p fspath.Path) ([]byte, error)
	Walk(p fspath.Path, fn func(p fspath.Path, stat FileStat) error) error
	WriteFile(p fspath.Path, content []byte, opts WriteOptions) error
	CreateDirectory(p fspath.Path) error
	Rename(src, dst fspath.Path, opts RenameOptions) error
	Copy(src, dst fspath.Path, opts CopyOptions) error
	Delete(p fspath.Path, opts DeleteOptions) error
}
