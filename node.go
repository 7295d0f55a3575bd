package memfs

// NodeInfo provides read-only access to node information for external consumers
type NodeInfo interface {
	// Name returns the node's name (last path component); "" for the root
	Name() string

	// Ino returns the process-unique node identifier
	Ino() uint64

	// Stat returns a snapshot of the node's metadata
	Stat() FileStat
}
