package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesSentinelAfterRewording(t *testing.T) {
	err := Invalidf(ErrProductInactive, "%s is no longer available.", "Headphones")

	assert.ErrorIs(t, err, ErrProductInactive)
	assert.NotErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, "Headphones is no longer available.", MessageOf(err))
	assert.Equal(t, "PRODUCT_INACTIVE", CodeOf(err))
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestInternal(t *testing.T) {
	assert.NoError(t, Internal(nil))

	wrapped := fmt.Errorf("loading cart: %w", ErrCartItemMissing)
	assert.Same(t, wrapped, Internal(wrapped))

	err := Internal(errors.New("connection refused"))
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "INTERNAL", CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	conflict := Internal(ErrConflict)
	assert.Equal(t, KindInternal, KindOf(conflict))
}

func TestKindOf_UnknownErrorIsInternal(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, ErrInternal.Message, MessageOf(err))
	assert.Equal(t, "NOT_FOUND", KindNotFound.String())
	assert.Equal(t, "CONFLICT", KindConflict.String())
}
