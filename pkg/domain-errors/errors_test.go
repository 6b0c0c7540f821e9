package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "profile not found")
	wrapped := fmt.Errorf("loading: %w", err)

	assert.True(t, HasCode(err, CodeNotFound))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestErrorIsComparesCodeAndMessage(t *testing.T) {
	err := Wrap(errors.New("boom"), CodeUnauthorized, "invalid credentials")

	require.ErrorIs(t, err, New(CodeUnauthorized, "invalid credentials"))
	require.NotErrorIs(t, err, New(CodeUnauthorized, "other"))
	require.NotErrorIs(t, err, New(CodeForbidden, "invalid credentials"))
}

func TestWrapUnwraps(t *testing.T) {
	root := errors.New("connection refused")
	err := Wrap(root, CodeUnavailable, "store unavailable")

	require.ErrorIs(t, err, root)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewFieldCarriesField(t *testing.T) {
	err := NewField(CodeValidation, "panNumber", "PAN number is required")

	de, ok := As(fmt.Errorf("ctx: %w", err))
	require.True(t, ok)
	assert.Equal(t, "panNumber", de.Field)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
}
