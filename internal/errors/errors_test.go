package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewNotFoundError("order", 7))
	assert.True(t, Is(err, ErrNotFound))
	assert.Equal(t, "lookup: order 7 not found", err.Error())
}

func TestPersistence(t *testing.T) {
	assert.Nil(t, Persistence("op", nil))

	domain := NewValidationError("amount", "required")
	assert.Same(t, domain, Persistence("op", domain))

	raw := stderrors.New("connection reset")
	wrapped := Persistence("insert payment", raw)

	var pe *PersistenceError
	assert.True(t, As(wrapped, &pe))
	assert.Equal(t, "insert payment", pe.Op)
	assert.True(t, Is(wrapped, raw))

	assert.Same(t, wrapped, Persistence("outer", wrapped))
}

func TestAmountMismatchErrorMessage(t *testing.T) {
	err := &AmountMismatchError{
		Expected: decimal.RequireFromString("118.8"),
		Received: decimal.RequireFromString("118.7"),
	}
	assert.Equal(t, "payment amount 118.70 does not match expected amount 118.80", err.Error())
	assert.True(t, IsDomain(err))
	assert.False(t, IsDomain(stderrors.New("boom")))
}
