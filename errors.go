package memfs

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/memfs/fspath"
)

// ErrorKind classifies every failure the engine can report
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindFileExists
	KindIsADirectory
	KindNotADirectory
	KindNotEmpty
	KindInvalidTarget
	KindNoPermissions
)

// Sentinels for errors.Is; an [*Error] matches the sentinel of its Kind.
var (
	ErrNotFound      = errors.New("no such file or directory")
	ErrFileExists    = errors.New("file exists")
	ErrIsADirectory  = errors.New("is a directory")
	ErrNotADirectory = errors.New("not a directory")
	ErrNotEmpty      = errors.New("directory not empty")
	ErrInvalidTarget = errors.New("invalid target")
	ErrNoPermissions = errors.New("no permissions")
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:      ErrNotFound,
	KindFileExists:    ErrFileExists,
	KindIsADirectory:  ErrIsADirectory,
	KindNotADirectory: ErrNotADirectory,
	KindNotEmpty:      ErrNotEmpty,
	KindInvalidTarget: ErrInvalidTarget,
	KindNoPermissions: ErrNoPermissions,
}

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindFileExists:
		return "FileExists"
	case KindIsADirectory:
		return "IsADirectory"
	case KindNotADirectory:
		return "NotADirectory"
	case KindNotEmpty:
		return "NotEmpty"
	case KindInvalidTarget:
		return "InvalidTarget"
	case KindNoPermissions:
		return "NoPermissions"
	default:
		return "Unknown"
	}
}

// Error is the failure value returned by every engine operation
type Error struct {
	Kind ErrorKind
	Op   string      // Engine operation, i.e. "rename"
	Path fspath.Path // Path the failure is about; not always the operation's argument
}

// NewError returns an [*Error] for op failing with kind at p
func NewError(kind ErrorKind, op string, p fspath.Path) *Error {
	return &Error{Kind: kind, Op: op, Path: p}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Unwrap())
}

// Unwrap returns the kind sentinel so errors.Is works on wrapped values
func (e *Error) Unwrap() error {
	if s, ok := kindSentinels[e.Kind]; ok {
		return s
	}
	return errors.New("unknown error")
}

// KindOf returns the kind of the first [*Error] in err's chain, or KindUnknown
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}
