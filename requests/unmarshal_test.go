package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNodeType(t *testing.T) {
	t.Parallel()

	typ, err := GetNodeType([]byte(`{"type":"file","path":"/a"}`))
	require.NoError(t, err)
	assert.Equal(t, FileNode, typ)

	_, err = GetNodeType([]byte(`not json`))
	assert.Error(t, err)
}

func TestUnmarshalFileRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		expContent []byte
		expErr     bool
	}{
		{"utf8_default", `{"type":"file","path":"/a.txt","content":"hello"}`, []byte("hello"), false},
		{"utf8_explicit", `{"type":"file","path":"/a.txt","content":"hi","encoding":"utf8"}`, []byte("hi"), false},
		{"base64", `{"type":"file","path":"/a.bin","content":"AAH/","encoding":"base64"}`, []byte{0, 1, 255}, false},
		{"empty", `{"type":"file","path":"/empty"}`, []byte{}, false},
		{"bad_base64", `{"type":"file","path":"/a","content":"!!","encoding":"base64"}`, nil, true},
		{"unknown_encoding", `{"type":"file","path":"/a","content":"x","encoding":"rot13"}`, nil, true},
		{"missing_path", `{"type":"file","content":"x"}`, nil, true},
		{"malformed", `{"type":`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := UnmarshalFileRequest([]byte(tt.input))
			if tt.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, memfs.FileNodeType, req.Type)
			assert.Equal(t, tt.expContent, req.Content)
		})
	}
}

func TestUnmarshalDirRequest(t *testing.T) {
	t.Parallel()

	req, err := UnmarshalDirRequest([]byte(`{"type":"dir","path":"/a/b"}`))
	require.NoError(t, err)
	assert.Equal(t, memfs.NodeRequest{Path: "/a/b", Type: memfs.DirNodeType}, req.NodeRequest)

	_, err = UnmarshalDirRequest([]byte(`{"type":"dir"}`))
	assert.Error(t, err)
}

func TestUnmarshalNodeRequest(t *testing.T) {
	t.Parallel()

	req, err := UnmarshalNodeRequest([]byte(`{"type":"dir","path":"/d"}`))
	require.NoError(t, err)
	assert.IsType(t, &memfs.DirCreateRequest{}, req)
	assert.Equal(t, "/d", req.GetNodeRequest().Path)

	req, err = UnmarshalNodeRequest([]byte(`{"type":"file","path":"/f"}`))
	require.NoError(t, err)
	assert.IsType(t, &memfs.FileCreateRequest{}, req)

	_, err = UnmarshalNodeRequest([]byte(`{"type":"symlink","path":"/l"}`))
	assert.ErrorContains(t, err, "unknown node type")
}

func writeSeed(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeedFile_YAML(t *testing.T) {
	t.Parallel()

	path := writeSeed(t, "seed.yaml", `
- type: dir
  path: /docs
- type: file
  path: /docs/readme.md
  content: "# hello"
- type: file
  path: /bin/blob
  content: AAH/
  encoding: base64
`)

	reqs, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, &memfs.DirCreateRequest{NodeRequest: memfs.NodeRequest{Path: "/docs", Type: memfs.DirNodeType}}, reqs[0])
	assert.Equal(t, &memfs.FileCreateRequest{
		NodeRequest: memfs.NodeRequest{Path: "/docs/readme.md", Type: memfs.FileNodeType},
		Content:     []byte("# hello"),
	}, reqs[1])
	assert.Equal(t, []byte{0, 1, 255}, reqs[2].(*memfs.FileCreateRequest).Content)
}

func TestLoadSeedFile_JSON(t *testing.T) {
	t.Parallel()

	path := writeSeed(t, "seed.json", `[
		{"type": "file", "path": "/a.txt", "content": "A"},
		{"type": "dir", "path": "/d"}
	]`)

	reqs, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "/a.txt", reqs[0].GetNodeRequest().Path)
	assert.Equal(t, memfs.DirNodeType, reqs[1].GetNodeRequest().Type)
}

func TestLoadSeedFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		expErr  string
	}{
		{"extension", "seed.txt", "[]", "unsupported seed file extension"},
		{"yaml_unknown_type", "seed.yaml", "- type: socket\n  path: /s\n", "entry 0"},
		{"json_bad_entry", "seed.json", `[{"type":"file","path":"/ok"},{"type":"file"}]`, "entry 1"},
		{"json_not_list", "seed.json", `{"type":"file"}`, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadSeedFile(writeSeed(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.expErr)
		})
	}

	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read seed file")
}

func TestDemoSeed(t *testing.T) {
	t.Parallel()

	reqs := DemoSeed()
	require.Len(t, reqs, 6)

	paths := make([]string, 0, len(reqs))
	for _, r := range reqs {
		paths = append(paths, r.GetNodeRequest().Path)
	}
	assert.Equal(t, []string{
		"/file.txt",
		"/anotherFile.txt",
		"/thirdFile.txt",
		"/directory",
		"/directory/fileInDir.txt",
		"/directory/YetAnotherFile.txt",
	}, paths)
}
