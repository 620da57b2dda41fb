package stanza

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

// Mock cryptographic session repository
type mockSignalRepository struct {
	mock.Mock
}

func (m *mockSignalRepository) DecryptGroupMessage(ctx context.Context, group, author types.JID, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, group, author, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSignalRepository) DecryptMessage(ctx context.Context, jid types.JID, encType string, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, jid, encType, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockSignalRepository) ProcessSenderKeyDistributionMessage(ctx context.Context, author types.JID, skdm *waE2E.SenderKeyDistributionMessage) error {
	args := m.Called(ctx, author, skdm)
	return args.Error(0)
}
