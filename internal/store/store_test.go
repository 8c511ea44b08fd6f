// ABOUTME: Tests for the store error taxonomy
// ABOUTME: Verifies errors.Is/As matching of kinds and wrapped causes

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind     Kind
		sentinel error
	}{
		{KindOpenFailed, ErrOpenFailed},
		{KindVersionConflict, ErrVersionConflict},
		{KindNotFound, ErrNotFound},
		{KindWriteFailed, ErrWriteFailed},
		{KindValidationFailed, ErrValidationFailed},
	}

	all := []error{ErrOpenFailed, ErrVersionConflict, ErrNotFound, ErrWriteFailed, ErrValidationFailed}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("outer: %w", newError("op", tt.kind, nil))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))

			for _, other := range all {
				if other == tt.sentinel {
					continue
				}
				assert.NotErrorIs(t, err, other)
			}
		})
	}
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := newError("save document", KindWriteFailed, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, "save document: write failed: disk full", err.Error())

	var se *Error
	if assert.ErrorAs(t, err, &se) {
		assert.Equal(t, "save document", se.Op)
	}
}

func TestKindOf_NonStoreError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not found", KindNotFound.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
