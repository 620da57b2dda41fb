package waid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/types"
)

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		name      string
		jid       types.JID
		user      bool
		lid       bool
		group     bool
		broadcast bool
		status    bool
		news      bool
		bot       bool
	}{
		{
			name: "standard user",
			jid:  types.NewJID("1234567890", types.DefaultUserServer),
			user: true,
		},
		{
			name: "legacy user",
			jid:  types.NewJID("1234567890", types.LegacyUserServer),
			user: true,
		},
		{
			name: "lid user",
			jid:  types.NewJID("98765", types.HiddenUserServer),
			lid:  true,
		},
		{
			name:  "group",
			jid:   types.NewJID("123456789-987654321", types.GroupServer),
			group: true,
		},
		{
			name:      "broadcast list",
			jid:       types.NewJID("1234567890123", types.BroadcastServer),
			broadcast: true,
		},
		{
			name:      "status broadcast",
			jid:       types.StatusBroadcastJID,
			broadcast: true,
			status:    true,
		},
		{
			name: "newsletter",
			jid:  types.NewJID("120363000000000000", types.NewsletterServer),
			news: true,
		},
		{
			name: "bot server",
			jid:  types.NewJID("1313555000", types.BotServer),
			bot:  true,
		},
		{
			name: "legacy meta ai account",
			jid:  types.NewJID("13135550002", types.LegacyUserServer),
			user: true,
			bot:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.user, IsUser(tt.jid), "IsUser")
			assert.Equal(t, tt.lid, IsLIDUser(tt.jid), "IsLIDUser")
			assert.Equal(t, tt.group, IsGroup(tt.jid), "IsGroup")
			assert.Equal(t, tt.broadcast, IsBroadcast(tt.jid), "IsBroadcast")
			assert.Equal(t, tt.status, IsStatusBroadcast(tt.jid), "IsStatusBroadcast")
			assert.Equal(t, tt.news, IsNewsletter(tt.jid), "IsNewsletter")
			assert.Equal(t, tt.bot, IsBot(tt.jid), "IsBot")
		})
	}
}

func TestSameUser(t *testing.T) {
	base := types.NewJID("1234567890", types.DefaultUserServer)

	device := base
	device.Device = 5
	assert.True(t, SameUser(base, device), "device suffix must not matter")

	legacy := types.NewJID("1234567890", types.LegacyUserServer)
	assert.True(t, SameUser(base, legacy), "legacy server maps onto the default one")

	other := types.NewJID("1234567891", types.DefaultUserServer)
	assert.False(t, SameUser(base, other))

	lid := types.NewJID("1234567890", types.HiddenUserServer)
	assert.False(t, SameUser(base, lid), "same user string in a different namespace is a different identity")
}

func TestNormalizedUser(t *testing.T) {
	jid := types.NewJID("1234567890", types.LegacyUserServer)
	jid.Device = 3

	normalized := NormalizedUser(jid)
	assert.Equal(t, types.NewJID("1234567890", types.DefaultUserServer), normalized)
	assert.Zero(t, normalized.Device)
}
