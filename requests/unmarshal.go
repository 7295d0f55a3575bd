// Package requests decodes seed files into node create requests
package requests

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/brettbedarf/memfs"
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (NodeType, error) {
	var meta struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalFileRequest decodes a JSON file request, decoding content per its encoding
func UnmarshalFileRequest(data []byte) (*memfs.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertFileDTO(dto)
}

// UnmarshalDirRequest decodes a JSON directory request
func UnmarshalDirRequest(data []byte) (*memfs.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertDirDTO(dto)
}

// UnmarshalNodeRequest decodes a JSON request of either type
func UnmarshalNodeRequest(data []byte) (memfs.NodeRequestor, error) {
	typ, err := GetNodeType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case FileNode:
		req, err := UnmarshalFileRequest(data)
		if err != nil {
			return nil, err
		}
		return req, nil
	case DirNode:
		req, err := UnmarshalDirRequest(data)
		if err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, fmt.Errorf("unknown node type: %q", typ)
	}
}

func convertNodeDTO(dto NodeRequestDTO, typ memfs.FileType) (memfs.NodeRequest, error) {
	if dto.Path == "" {
		return memfs.NodeRequest{}, fmt.Errorf("%s request: missing path", dto.Type)
	}
	return memfs.NodeRequest{Path: dto.Path, Type: typ}, nil
}

func convertFileDTO(dto FileRequestDTO) (*memfs.FileCreateRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO, memfs.FileNodeType)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch dto.Encoding {
	case "", UTF8:
		content = []byte(dto.Content)
	case Base64:
		content, err = base64.StdEncoding.DecodeString(dto.Content)
		if err != nil {
			return nil, fmt.Errorf("file request %q: %w", dto.Path, err)
		}
	default:
		return nil, fmt.Errorf("file request %q: unknown encoding %q", dto.Path, dto.Encoding)
	}

	return &memfs.FileCreateRequest{NodeRequest: node, Content: content}, nil
}

func convertDirDTO(dto DirRequestDTO) (*memfs.DirCreateRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO, memfs.DirNodeType)
	if err != nil {
		return nil, err
	}
	return &memfs.DirCreateRequest{NodeRequest: node}, nil
}
