package memfs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/brettbedarf/memfs/fspath"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{KindNotFound, ErrNotFound},
		{KindFileExists, ErrFileExists},
		{KindIsADirectory, ErrIsADirectory},
		{KindNotADirectory, ErrNotADirectory},
		{KindNotEmpty, ErrNotEmpty},
		{KindInvalidTarget, ErrInvalidTarget},
		{KindNoPermissions, ErrNoPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			err := NewError(tt.kind, "op", fspath.MustParse("/a"))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := NewError(KindFileExists, "createDirectory", fspath.MustParse("/dir"))
	assert.Equal(t, "createDirectory /dir: file exists", err.Error())
}

func TestKindOf_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("bare: %w", ErrNotFound)))
}
