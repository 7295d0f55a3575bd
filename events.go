package memfs

import "github.com/brettbedarf/memfs/fspath"

// ChangeType is the kind of structural change a [ChangeEvent] reports
type ChangeType uint8

const (
	Changed ChangeType = iota + 1
	Created
	Deleted
)

func (t ChangeType) String() string {
	switch t {
	case Changed:
		return "changed"
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ChangeEvent records a single structural change at Path
type ChangeEvent struct {
	Type ChangeType
	Path fspath.Path
}

// ChangeBatch holds every event produced by one engine operation, in emission order
type ChangeBatch struct {
	ID     string
	Events []ChangeEvent
}
