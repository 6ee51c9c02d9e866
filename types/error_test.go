package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorChaining(t *testing.T) {
	root := errors.New("connection reset")
	err := NewError(ErrUpstreamError, "upstream failed").
		WithCause(root).
		WithRetryable(true).
		WithProvider("openai")

	assert.Equal(t, ErrUpstreamError, GetErrorCode(err))
	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, root))
	assert.Contains(t, err.Error(), "UPSTREAM_ERROR")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewError(ErrCompressionFailed, "context compression failed")

	require.NoError(t, err.Unwrap())
	assert.Equal(t, "[COMPRESSION_FAILED] context compression failed", err.Error())
}

func TestErrorHelpersOnForeignError(t *testing.T) {
	plain := errors.New("plain")

	assert.False(t, IsRetryable(plain))
	assert.Equal(t, ErrorCode(""), GetErrorCode(plain))
}
