package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	err := NewNotFoundError("Credit customer")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyRestored)

	wrapped := fmt.Errorf("load: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestTypedErrors_ExposeDomainError(t *testing.T) {
	t.Run("credit limit", func(t *testing.T) {
		err := fmt.Errorf("charge: %w", NewCreditLimitExceededError(decimal.NewFromInt(1000), decimal.NewFromInt(600), decimal.NewFromInt(500)))

		var de *DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, CodeCreditLimitExceeded, de.Code)
		assert.True(t, HasCode(err, CodeCreditLimitExceeded))
	})

	t.Run("id conflict", func(t *testing.T) {
		id := uuid.New()
		err := NewIDConflictError("sale", id)

		var conflict *IDConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, id, conflict.OriginalID)
		assert.Equal(t, id.String(), conflict.Details()["original_id"])
		assert.True(t, HasCode(err, CodeIDConflict))
	})

	t.Run("invariant violation", func(t *testing.T) {
		err := NewInvariantViolationError("non_negative_balance", "negative")
		assert.True(t, HasCode(err, CodeInvariantViolation))
	})
}
