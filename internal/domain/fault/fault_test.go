package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := Errorf(NotFound, "frame %d not found", 7)
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, "frame 7 not found", err.Error())

	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestKindOfWrappedChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Storage, cause, "query frames")
	wrapped := fmt.Errorf("ingest: %w", err)

	assert.Equal(t, Storage, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, cause), "cause stays reachable through the chain")
	assert.Equal(t, "query frames: connection refused", err.Error())
}

func TestIsKind(t *testing.T) {
	err := New(Validation, "bad input")
	assert.True(t, IsKind(err, Validation))
	assert.False(t, IsKind(err, NotFound))
}

func TestKindStrings(t *testing.T) {
	tests := map[Kind]string{
		Unknown:          "unknown",
		NotFound:         "not_found",
		Validation:       "validation",
		InsufficientData: "insufficient_data",
		Conflict:         "conflict",
		Upstream:         "upstream_failure",
		Storage:          "storage_failure",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrap(Upstream, cause, "fsod call")
	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}
