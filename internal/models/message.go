package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	KeySize    = 32     // AES-256
	NonceSize  = 12     // GCM standard nonce size
	Iterations = 100000 // PBKDF2 iterations
)

// StoredMessage is the persisted form of a decoded message envelope.
// Identity columns and the plaintext blob are encrypted at rest when
// storage encryption is enabled.
type StoredMessage struct {
	ID          int64     `db:"id"`
	ChatJID     string    `db:"chat_jid"`
	MsgID       string    `db:"msg_id"`
	SenderJID   string    `db:"sender_jid"`
	FromMe      bool      `db:"from_me"`
	Timestamp   time.Time `db:"timestamp"`
	PushName    string    `db:"push_name"`
	Platform    string    `db:"platform"`
	MessageType string    `db:"message_type"`
	StubType    int       `db:"stub_type"`
	StubParams  string    `db:"stub_params"`
	// Plaintext is the protobuf-marshaled decoded message, empty when the
	// message could not be decrypted.
	Plaintext []byte    `db:"plaintext"`
	CreatedAt time.Time `db:"created_at"`
}

// MarshalStubParams serializes stub parameters for storage.
func MarshalStubParams(params []string) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stub parameters: %w", err)
	}
	return string(data), nil
}

// UnmarshalStubParams deserializes stub parameters from storage.
func UnmarshalStubParams(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var params []string
	if err := json.Unmarshal([]byte(data), &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stub parameters: %w", err)
	}
	return params, nil
}
