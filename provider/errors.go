package provider

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/memfs"
)

// Code is the host-facing error identifier
type Code string

const (
	FileNotFound      Code = "FileNotFound"
	FileExists        Code = "FileExists"
	FileNotADirectory Code = "FileNotADirectory"
	FileIsADirectory  Code = "FileIsADirectory"
	NoPermissions     Code = "NoPermissions"
	DirectoryNotEmpty Code = "DirectoryNotEmpty"
	InvalidTarget     Code = "InvalidTarget"
	Unavailable       Code = "Unavailable"
)

var (
	ErrReadOnly      = errors.New("file system is read-only")
	ErrUnknownScheme = errors.New("scheme not served by this provider")
)

// FileSystemError is the single error type crossing the host boundary
type FileSystemError struct {
	Code Code
	URI  URI
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Code, e.URI, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// CodeOf returns the host code carried by err, or Unavailable
func CodeOf(err error) Code {
	var fe *FileSystemError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return Unavailable
}

var kindCodes = map[memfs.ErrorKind]Code{
	memfs.KindNotFound:      FileNotFound,
	memfs.KindFileExists:    FileExists,
	memfs.KindNotADirectory: FileNotADirectory,
	memfs.KindIsADirectory:  FileIsADirectory,
	memfs.KindNoPermissions: NoPermissions,
	memfs.KindNotEmpty:      DirectoryNotEmpty,
	memfs.KindInvalidTarget: InvalidTarget,
}

// codeFor maps an engine error kind to its host code
func codeFor(kind memfs.ErrorKind) Code {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return Unavailable
}
