package mocks

import (
	"maps"
	"slices"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/fspath"
	"github.com/stretchr/testify/mock"
)

// MockFileSystem implements memfs.FileSystem for testing across packages
type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) Stat(p fspath.Path) (memfs.FileStat, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return memfs.FileStat{}, args.Error(1)
	}
	return args.Get(0).(memfs.FileStat), args.Error(1)
}

func (m *MockFileSystem) ReadDirectory(p fspath.Path) ([]memfs.DirEntry, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]memfs.DirEntry), args.Error(1)
}

func (m *MockFileSystem) ReadFile(p fspath.Path) ([]byte, error) {
	args := m.Called(p)

	// Handle function return types (for content computed from the path)
	if fn, ok := args.Get(0).(func(fspath.Path) []byte); ok {
		return fn(p), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Walk feeds fn the (path, stat) pairs given as the first return value, if any
func (m *MockFileSystem) Walk(p fspath.Path, fn func(fspath.Path, memfs.FileStat) error) error {
	args := m.Called(p, fn)
	if nodes, ok := args.Get(0).(map[string]memfs.FileStat); ok {
		for _, key := range slices.Sorted(maps.Keys(nodes)) {
			if err := fn(fspath.MustParse(key), nodes[key]); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockFileSystem) WriteFile(p fspath.Path, content []byte, opts memfs.WriteOptions) error {
	args := m.Called(p, content, opts)
	return args.Error(0)
}

func (m *MockFileSystem) CreateDirectory(p fspath.Path) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockFileSystem) Rename(src, dst fspath.Path, opts memfs.RenameOptions) error {
	args := m.Called(src, dst, opts)
	return args.Error(0)
}

func (m *MockFileSystem) Copy(src, dst fspath.Path, opts memfs.CopyOptions) error {
	args := m.Called(src, dst, opts)
	return args.Error(0)
}

func (m *MockFileSystem) Delete(p fspath.Path, opts memfs.DeleteOptions) error {
	args := m.Called(p, opts)
	return args.Error(0)
}

var _ memfs.FileSystem = (*MockFileSystem)(nil)
