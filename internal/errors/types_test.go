package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorFormatting(t *testing.T) {
	plain := New(ErrCodeProtocolViolation, "recipient without from-me")
	assert.Equal(t, "PROTOCOL_VIOLATION: recipient without from-me", plain.Error())

	cause := stderrors.New("no session record")
	wrapped := Wrap(cause, ErrCodeDecryptionFailed, "payload rejected")
	assert.Equal(t, "DECRYPTION_FAILED: payload rejected: no session record", wrapped.Error())
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))
}

func TestAppErrorContext(t *testing.T) {
	err := New(ErrCodeDatabaseQuery, "insert failed").
		WithContext("table", "messages").
		WithContext("attempt", 2)

	require.NotNil(t, err.Context)
	assert.Equal(t, "messages", err.Context["table"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(stderrors.New("plain")))
	assert.False(t, IsRetryable(New(ErrCodeInvalidConfig, "bad config")))
	assert.True(t, IsRetryable(WrapRetryable(stderrors.New("locked"), ErrCodeDatabaseQuery, "insert failed")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidProtobuf, GetCode(New(ErrCodeInvalidProtobuf, "bad payload")))
	assert.Equal(t, ErrCodeInternalError, GetCode(stderrors.New("plain")))
}

func TestNewDatabaseError(t *testing.T) {
	err := NewDatabaseError("insert", stderrors.New("disk full"))
	assert.Equal(t, ErrCodeDatabaseQuery, err.Code)
	assert.Equal(t, "insert", err.Context["operation"])
	assert.Contains(t, err.Error(), "disk full")
}
