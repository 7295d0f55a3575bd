package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/memfs"
)

// LoadSeedFile reads a YAML or JSON list of requests, chosen by file extension.
// The returned requests keep the file's order.
func LoadSeedFile(path string) ([]memfs.NodeRequestor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var reqs []memfs.NodeRequestor
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		reqs, err = ParseSeedYAML(data)
	case ".json":
		reqs, err = ParseSeedJSON(data)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (use .yaml, .yml, or .json)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return reqs, nil
}

// ParseSeedJSON decodes a JSON array of requests
func ParseSeedJSON(data []byte) ([]memfs.NodeRequestor, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	reqs := make([]memfs.NodeRequestor, 0, len(raw))
	for i, entry := range raw {
		req, err := UnmarshalNodeRequest(entry)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// ParseSeedYAML decodes a YAML sequence of requests
func ParseSeedYAML(data []byte) ([]memfs.NodeRequestor, error) {
	var dtos []FileRequestDTO
	if err := yaml.Unmarshal(data, &dtos); err != nil {
		return nil, err
	}

	reqs := make([]memfs.NodeRequestor, 0, len(dtos))
	for i, dto := range dtos {
		var (
			req memfs.NodeRequestor
			err error
		)
		switch dto.Type {
		case FileNode:
			req, err = convertFileDTO(dto)
		case DirNode:
			req, err = convertDirDTO(DirRequestDTO{NodeRequestDTO: dto.NodeRequestDTO})
		default:
			err = fmt.Errorf("unknown node type: %q", dto.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// DemoSeed returns the sample tree: three files on the root and a directory holding two more
func DemoSeed() []memfs.NodeRequestor {
	file := func(path, content string) *memfs.FileCreateRequest {
		return &memfs.FileCreateRequest{
			NodeRequest: memfs.NodeRequest{Path: path, Type: memfs.FileNodeType},
			Content:     []byte(content),
		}
	}
	return []memfs.NodeRequestor{
		file("/file.txt", "File on root level"),
		file("/anotherFile.txt", "Another file on root"),
		file("/thirdFile.txt", "File numero 3 on root"),
		&memfs.DirCreateRequest{NodeRequest: memfs.NodeRequest{Path: "/directory", Type: memfs.DirNodeType}},
		file("/directory/fileInDir.txt", "File in directory"),
		file("/directory/YetAnotherFile.txt", " Another file in dir"),
	}
}
