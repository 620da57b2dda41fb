package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"waingest/internal/migrations"
	"waingest/internal/models"
	"waingest/internal/security"
)

// Database stores decoded message envelopes in SQLite. Identity columns
// and the plaintext blob are encrypted at rest when storage encryption is
// enabled; lookup columns use deterministic encryption so queries and the
// uniqueness constraint keep working.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	// Validate database path to prevent directory traversal
	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveMessage inserts a stored message, replacing any existing row for the
// same chat and message ID so redelivered stanzas stay idempotent.
func (d *Database) SaveMessage(ctx context.Context, msg *models.StoredMessage) error {
	return retryableDBOperation(ctx, func() error {
		return d.saveMessage(ctx, msg)
	}, "save message")
}

func (d *Database) saveMessage(ctx context.Context, msg *models.StoredMessage) error {
	encryptedChatJID, err := d.encryptor.EncryptForLookupIfEnabled(msg.ChatJID)
	if err != nil {
		return fmt.Errorf("failed to encrypt chat JID: %w", err)
	}

	encryptedMsgID, err := d.encryptor.EncryptForLookupIfEnabled(msg.MsgID)
	if err != nil {
		return fmt.Errorf("failed to encrypt message ID: %w", err)
	}

	encryptedSenderJID, err := d.encryptor.EncryptIfEnabled(msg.SenderJID)
	if err != nil {
		return fmt.Errorf("failed to encrypt sender JID: %w", err)
	}

	encryptedPlaintext, err := d.encryptor.EncryptBlobIfEnabled(msg.Plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt message payload: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO messages (
			chat_jid, msg_id, sender_jid, from_me, timestamp,
			push_name, platform, message_type, stub_type, stub_params, plaintext
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = d.db.ExecContext(ctx, query,
		encryptedChatJID,
		encryptedMsgID,
		encryptedSenderJID,
		msg.FromMe,
		msg.Timestamp,
		msg.PushName,
		msg.Platform,
		msg.MessageType,
		msg.StubType,
		msg.StubParams,
		encryptedPlaintext,
	)

	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	return nil
}

// GetMessage fetches a stored message by chat and message ID. Returns
// nil without error when no such message exists.
func (d *Database) GetMessage(ctx context.Context, chatJID, msgID string) (*models.StoredMessage, error) {
	encryptedChatJID, err := d.encryptor.EncryptForLookupIfEnabled(chatJID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt chat JID: %w", err)
	}

	encryptedMsgID, err := d.encryptor.EncryptForLookupIfEnabled(msgID)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt message ID: %w", err)
	}

	query := `
		SELECT id, chat_jid, msg_id, sender_jid, from_me, timestamp,
			   push_name, platform, message_type, stub_type, stub_params,
			   plaintext, created_at
		FROM messages
		WHERE chat_jid = ? AND msg_id = ?
	`

	var encryptedChat, encryptedID, encryptedSender string
	var encryptedPlaintext []byte
	msg := &models.StoredMessage{}

	err = d.db.QueryRowContext(ctx, query, encryptedChatJID, encryptedMsgID).Scan(
		&msg.ID,
		&encryptedChat,
		&encryptedID,
		&encryptedSender,
		&msg.FromMe,
		&msg.Timestamp,
		&msg.PushName,
		&msg.Platform,
		&msg.MessageType,
		&msg.StubType,
		&msg.StubParams,
		&encryptedPlaintext,
		&msg.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	// Lookup columns are deterministic ciphertext; restore the caller's
	// plaintext values instead of decrypting them.
	msg.ChatJID = chatJID
	msg.MsgID = msgID

	msg.SenderJID, err = d.encryptor.DecryptIfEnabled(encryptedSender)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt sender JID: %w", err)
	}

	msg.Plaintext, err = d.encryptor.DecryptBlobIfEnabled(encryptedPlaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt message payload: %w", err)
	}

	return msg, nil
}

// CountMessages returns the number of stored messages for a chat.
func (d *Database) CountMessages(ctx context.Context, chatJID string) (int64, error) {
	encryptedChatJID, err := d.encryptor.EncryptForLookupIfEnabled(chatJID)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt chat JID: %w", err)
	}

	var count int64
	err = d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE chat_jid = ?`, encryptedChatJID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

