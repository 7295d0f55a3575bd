package memfs

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path string
	Type FileType
}

// FileCreateRequest seeds a file. Missing parent directories are created.
type FileCreateRequest struct {
	NodeRequest
	Content []byte
}

// DirCreateRequest seeds a directory and any missing parents, like `mkdir -p`
type DirCreateRequest struct {
	NodeRequest
}

// NodeRequestor is implemented by the concrete create requests so they can be
// handled as one ordered list
type NodeRequestor interface {
	GetNodeRequest() *NodeRequest
}

func (r *FileCreateRequest) GetNodeRequest() *NodeRequest {
	return &r.NodeRequest
}

func (r *DirCreateRequest) GetNodeRequest() *NodeRequest {
	return &r.NodeRequest
}
