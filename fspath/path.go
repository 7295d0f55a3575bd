// Package fspath parses and compares the slash separated paths used to address
// nodes in the virtual tree. Paths are case-sensitive and always absolute.
package fspath

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Separator between path segments
const Separator = "/"

// ErrInvalidPath is returned by [Parse] for paths that cannot be normalized
var ErrInvalidPath = errors.New("invalid path")

// Path is a normalized sequence of non-empty segments. The zero value is the root.
// Paths are values; none of the methods modify the receiver.
type Path struct {
	segs []string
}

// Root returns the root path
func Root() Path {
	return Path{}
}

// Parse normalizes raw into a Path.
//
// Empty and "." segments are dropped so leading, trailing and repeated separators
// are ignored. ".." removes the previous segment and fails if it would climb above
// the root. Segments containing NUL are rejected.
func Parse(raw string) (Path, error) {
	return normalize(strings.SplitSeq(raw, Separator), raw)
}

// FromSegments builds a Path from already split segments, normalized as by
// [Parse]. A segment is kept whole even if it contains [Separator].
func FromSegments(segs ...string) (Path, error) {
	return normalize(slices.Values(segs), strings.Join(segs, Separator))
}

func normalize(in iter.Seq[string], raw string) (Path, error) {
	var segs []string
	for seg := range in {
		switch {
		case seg == "" || seg == ".":
			continue
		case seg == "..":
			if len(segs) == 0 {
				return Path{}, fmt.Errorf("%w: %q escapes root", ErrInvalidPath, raw)
			}
			segs = segs[:len(segs)-1]
		case strings.ContainsRune(seg, 0):
			return Path{}, fmt.Errorf("%w: %q contains NUL", ErrInvalidPath, raw)
		default:
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return Path{}, nil
	}
	return Path{segs: segs}, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and constants.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// IsRoot reports whether p has no segments
func (p Path) IsRoot() bool {
	return len(p.segs) == 0
}

// Len returns the number of segments
func (p Path) Len() int {
	return len(p.segs)
}

// Segments returns a copy of the segments; never nil
func (p Path) Segments() []string {
	return append(make([]string, 0, len(p.segs)), p.segs...)
}

// Base returns the last segment, or "" for the root
func (p Path) Base() string {
	if p.IsRoot() {
		return ""
	}
	return p.segs[len(p.segs)-1]
}

// Parent returns p without its last segment. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Path{}
	}
	return Path{segs: p.segs[:len(p.segs)-1:len(p.segs)-1]}
}

// Join returns a new path with name appended. name must be a single segment.
func (p Path) Join(name string) Path {
	segs := make([]string, len(p.segs), len(p.segs)+1)
	copy(segs, p.segs)
	return Path{segs: append(segs, name)}
}

// Equal reports whether both paths have identical segments
func (p Path) Equal(o Path) bool {
	return slices.Equal(p.segs, o.segs)
}

// Compare orders paths segment by segment; it returns -1, 0 or +1
func (p Path) Compare(o Path) int {
	return slices.Compare(p.segs, o.segs)
}

// HasPrefix reports whether every segment of prefix matches the leading segments of p.
// Every path has the root as prefix and every path is a prefix of itself.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segs) > len(p.segs) {
		return false
	}
	return slices.Equal(p.segs[:len(prefix.segs)], prefix.segs)
}

// String renders the path with a leading separator; the root is "/"
func (p Path) String() string {
	return Separator + strings.Join(p.segs, Separator)
}

// MarshalText implements encoding.TextMarshaler so paths log and serialize as strings
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
