package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriticalError(t *testing.T) {
	t.Run("carries reason, attempts and cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewCriticalError(ReasonRetriesExhausted, 2, cause)

		assert.Equal(t, ReasonRetriesExhausted, err.Reason)
		assert.Equal(t, 2, err.AttemptsMade)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "retries_exhausted")
		assert.Contains(t, err.Error(), "2 attempts")
	})

	t.Run("nil cause is allowed", func(t *testing.T) {
		err := NewCriticalError(ReasonStale, 0, nil)
		assert.Nil(t, err.Unwrap())
		assert.Contains(t, err.Error(), "stale")
	})
}

func TestAsCritical(t *testing.T) {
	t.Run("extracts from wrapped error", func(t *testing.T) {
		wrapped := fmt.Errorf("dispatch: %w", NewCriticalError(ReasonOrderNotFound, 1, nil))

		ce, ok := AsCritical(wrapped)
		require.True(t, ok)
		assert.Equal(t, ReasonOrderNotFound, ce.Reason)
		assert.Equal(t, 1, ce.AttemptsMade)
	})

	t.Run("returns false for ordinary errors", func(t *testing.T) {
		_, ok := AsCritical(errors.New("boom"))
		assert.False(t, ok)
		assert.False(t, IsCritical(errors.New("boom")))
	})

	t.Run("returns false for nil", func(t *testing.T) {
		assert.False(t, IsCritical(nil))
	})
}

func TestOrderAPIError(t *testing.T) {
	tests := []struct {
		statusCode int
		definitive bool
		notFound   bool
	}{
		{404, true, true},
		{400, true, false},
		{403, true, false},
		{500, false, false},
		{503, false, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.statusCode), func(t *testing.T) {
			err := &OrderAPIError{StatusCode: tt.statusCode}
			assert.Equal(t, tt.definitive, err.Definitive())
			assert.Equal(t, tt.notFound, err.NotFound())
			assert.Contains(t, err.Error(), fmt.Sprintf("%d", tt.statusCode))
		})
	}
}
