package requests

// NodeType is the "type" discriminator of a request. Valid types are FileNode "file", DirNode "dir".
type NodeType string

const (
	FileNode NodeType = "file"
	DirNode  NodeType = "dir"
)

// Encoding of the content field of a file request
type Encoding string

const (
	UTF8   Encoding = "utf8" // default
	Base64 Encoding = "base64"
)

// NodeRequestDTO is the serialized representation of [memfs.NodeRequest]
type NodeRequestDTO struct {
	Path string   `json:"path" yaml:"path"`
	Type NodeType `json:"type" yaml:"type"`
}

// FileRequestDTO is the serialized representation of [memfs.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
	Content        string   `json:"content,omitempty" yaml:"content,omitempty"`
	Encoding       Encoding `json:"encoding,omitempty" yaml:"encoding,omitempty"`
}

type DirRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
}
