package filesystem

import (
	"time"

	"github.com/brettbedarf/memfs"
)

// Inode holds a node's metadata and, for files, its content.
// Fields are guarded by the owning FileSystem's tree lock.
type Inode struct {
	ino   uint64
	kind  memfs.FileType
	ctime time.Time
	mtime time.Time
	data  []byte // file content; always nil for directories
}

func NewInode(ino uint64, kind memfs.FileType, now time.Time) *Inode {
	return &Inode{
		ino:   ino,
		kind:  kind,
		ctime: now,
		mtime: now,
	}
}

// Ino returns the process-unique identifier
func (i *Inode) Ino() uint64 {
	return i.ino
}

func (i *Inode) Kind() memfs.FileType {
	return i.kind
}

func (i *Inode) IsDir() bool {
	return i.kind == memfs.DirNodeType
}

// Size is the content length for files and 0 for directories
func (i *Inode) Size() int64 {
	return int64(len(i.data))
}

// Stat returns a copy of the metadata
func (i *Inode) Stat() memfs.FileStat {
	return memfs.FileStat{
		Type:  i.kind,
		Size:  i.Size(),
		Ctime: i.ctime,
		Mtime: i.mtime,
		Ino:   i.ino,
	}
}

// Content returns a copy of the file content; never nil for files
func (i *Inode) Content() []byte {
	return append(make([]byte, 0, len(i.data)), i.data...)
}

// setContent stores a private copy of b and bumps mtime
func (i *Inode) setContent(b []byte, now time.Time) {
	i.data = append(make([]byte, 0, len(b)), b...)
	i.touch(now)
}

func (i *Inode) touch(now time.Time) {
	i.mtime = now
}
