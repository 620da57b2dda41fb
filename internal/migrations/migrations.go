package migrations

// initialSchema creates the message store. Lookup columns hold
// deterministic ciphertext when storage encryption is enabled, so the
// unique index still works.
const initialSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_jid TEXT NOT NULL,
	msg_id TEXT NOT NULL,
	sender_jid TEXT NOT NULL,
	from_me INTEGER NOT NULL,
	timestamp DATETIME NOT NULL,
	push_name TEXT NOT NULL DEFAULT '',
	platform TEXT NOT NULL DEFAULT '',
	message_type TEXT NOT NULL DEFAULT '',
	stub_type INTEGER NOT NULL DEFAULT 0,
	stub_params TEXT NOT NULL DEFAULT '',
	plaintext BLOB,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_chat_msg ON messages(chat_jid, msg_id);
CREATE INDEX IF NOT EXISTS idx_messages_timestamp ON messages(timestamp);
`

// GetInitialSchema returns the initial database schema
func GetInitialSchema() string {
	return initialSchema
}
