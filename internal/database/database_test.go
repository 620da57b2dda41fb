package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waingest/internal/models"
)

func setupTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})
	return db
}

func testMessage() *models.StoredMessage {
	return &models.StoredMessage{
		ChatJID:     "123456789@s.whatsapp.net",
		MsgID:       "3EB0FEF1234567890ABCDE",
		SenderJID:   "123456789@s.whatsapp.net",
		FromMe:      false,
		Timestamp:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		PushName:    "Alice",
		Platform:    "web",
		MessageType: "chat",
		Plaintext:   []byte{0x0A, 0x05, 'h', 'e', 'l', 'l', 'o'},
	}
}

func TestNewDatabaseInvalidPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("../outside/test.db")
	assert.Error(t, err)
}

func TestSaveAndGetMessage(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	msg := testMessage()

	require.NoError(t, db.SaveMessage(ctx, msg))

	got, err := db.GetMessage(ctx, msg.ChatJID, msg.MsgID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.ChatJID, got.ChatJID)
	assert.Equal(t, msg.MsgID, got.MsgID)
	assert.Equal(t, msg.SenderJID, got.SenderJID)
	assert.Equal(t, msg.PushName, got.PushName)
	assert.Equal(t, msg.Platform, got.Platform)
	assert.Equal(t, msg.MessageType, got.MessageType)
	assert.Equal(t, msg.Plaintext, got.Plaintext)
	assert.False(t, got.FromMe)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetMessageNotFound(t *testing.T) {
	db := setupTestDatabase(t)

	got, err := db.GetMessage(context.Background(), "123456789@s.whatsapp.net", "NOPE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveMessageIdempotent(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()
	msg := testMessage()

	require.NoError(t, db.SaveMessage(ctx, msg))

	// A redelivered stanza replaces the stored row instead of adding one.
	msg.PushName = "Alice (renamed)"
	require.NoError(t, db.SaveMessage(ctx, msg))

	count, err := db.CountMessages(ctx, msg.ChatJID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	got, err := db.GetMessage(ctx, msg.ChatJID, msg.MsgID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice (renamed)", got.PushName)
}

func TestSaveMessageStub(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	stubParams, err := models.MarshalStubParams([]string{"no session"})
	require.NoError(t, err)

	msg := testMessage()
	msg.Plaintext = nil
	msg.StubType = 1
	msg.StubParams = stubParams
	require.NoError(t, db.SaveMessage(ctx, msg))

	got, err := db.GetMessage(ctx, msg.ChatJID, msg.MsgID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Plaintext)
	assert.Equal(t, 1, got.StubType)

	params, err := models.UnmarshalStubParams(got.StubParams)
	require.NoError(t, err)
	assert.Equal(t, []string{"no session"}, params)
}

func TestCountMessages(t *testing.T) {
	db := setupTestDatabase(t)
	ctx := context.Background()

	first := testMessage()
	second := testMessage()
	second.MsgID = "3EB0FEF1234567890FFFFF"
	other := testMessage()
	other.ChatJID = "987654321@s.whatsapp.net"

	require.NoError(t, db.SaveMessage(ctx, first))
	require.NoError(t, db.SaveMessage(ctx, second))
	require.NoError(t, db.SaveMessage(ctx, other))

	count, err := db.CountMessages(ctx, first.ChatJID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = db.CountMessages(ctx, "555@s.whatsapp.net")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDatabaseWithEncryption(t *testing.T) {
	t.Setenv("WAINGEST_ENABLE_ENCRYPTION", "true")
	t.Setenv("WAINGEST_ENCRYPTION_SECRET", "test-secret-key-at-least-32-chars-long")

	db := setupTestDatabase(t)
	ctx := context.Background()
	msg := testMessage()

	require.NoError(t, db.SaveMessage(ctx, msg))

	got, err := db.GetMessage(ctx, msg.ChatJID, msg.MsgID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, msg.SenderJID, got.SenderJID)
	assert.Equal(t, msg.Plaintext, got.Plaintext)

	// Deterministic lookup encryption keeps idempotent replacement working.
	require.NoError(t, db.SaveMessage(ctx, msg))
	count, err := db.CountMessages(ctx, msg.ChatJID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
