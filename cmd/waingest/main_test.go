package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"waingest/internal/database"
)

func writeIngestConfig(t *testing.T, dir, dbPath string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	content := fmt.Sprintf(`{
		"identity": {"own_jid": "999111222@s.whatsapp.net"},
		"database": {"path": %q}
	}`, dbPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func writeStanzaFile(t *testing.T, dir, name string, node waBinary.Node) string {
	t.Helper()
	data, err := waBinary.Marshal(node)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRunIngestsStanzas(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "messages.db")
	cfgPath := writeIngestConfig(t, dir, dbPath)

	plain, err := proto.Marshal(&waE2E.Message{Conversation: proto.String("hello")})
	require.NoError(t, err)
	from := types.NewJID("123456789", types.DefaultUserServer)

	plaintextStanza := writeStanzaFile(t, dir, "plaintext.bin", waBinary.Node{
		Tag: "message",
		Attrs: waBinary.Attrs{
			"id":   "1A2B3C4D5E6F",
			"t":    "1700000000",
			"from": from,
		},
		Content: []waBinary.Node{{Tag: "plaintext", Content: plain}},
	})
	encryptedStanza := writeStanzaFile(t, dir, "encrypted.bin", waBinary.Node{
		Tag: "message",
		Attrs: waBinary.Attrs{
			"id":   "AA2B3C4D5E6F",
			"t":    "1700000001",
			"from": from,
		},
		Content: []waBinary.Node{{
			Tag:     "enc",
			Attrs:   waBinary.Attrs{"type": "msg"},
			Content: []byte{0xC1},
		}},
	})

	err = run(context.Background(), quietLogger(), cfgPath, []string{plaintextStanza, encryptedStanza})
	require.NoError(t, err)

	db, err := database.New(dbPath)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetMessage(context.Background(), from.String(), "1A2B3C4D5E6F")
	require.NoError(t, err)
	require.NotNil(t, got)
	var decoded waE2E.Message
	require.NoError(t, proto.Unmarshal(got.Plaintext, &decoded))
	assert.Equal(t, "hello", decoded.GetConversation())
	assert.Zero(t, got.StubType)

	// Without a session store the encrypted payload persists as a stub.
	stub, err := db.GetMessage(context.Background(), from.String(), "AA2B3C4D5E6F")
	require.NoError(t, err)
	require.NotNil(t, stub)
	assert.Empty(t, stub.Plaintext)
	assert.Equal(t, int(waWeb.WebMessageInfo_CIPHERTEXT), stub.StubType)
}

func TestRunDropsUnattributableStanza(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "messages.db")
	cfgPath := writeIngestConfig(t, dir, dbPath)

	rejected := writeStanzaFile(t, dir, "rejected.bin", waBinary.Node{
		Tag: "message",
		Attrs: waBinary.Attrs{
			"id":   "1A2B3C4D5E6F",
			"t":    "1700000000",
			"from": types.NewJID("unknown", "example.com"),
		},
	})

	// A dropped stanza must not abort the ingest run.
	err := run(context.Background(), quietLogger(), cfgPath, []string{rejected})
	require.NoError(t, err)

	db, err := database.New(dbPath)
	require.NoError(t, err)
	defer db.Close()
	count, err := db.CountMessages(context.Background(), "unknown@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	err := run(context.Background(), quietLogger(), filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
