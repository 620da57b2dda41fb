// Package waid classifies and normalizes WhatsApp JIDs.
//
// A JID identifies an addressable entity on the protocol: a phone-number
// user, a LID (hidden identity) user, a group, a broadcast list (including
// the distinguished status broadcast), a newsletter, or a Meta AI bot.
// All functions here are pure; they inspect only the JID value.
package waid

import (
	"go.mau.fi/whatsmeow/types"
)

// metaAIBotUser is the legacy Meta AI account that predates the @bot server.
const metaAIBotUser = "13135550002"

// IsUser reports whether jid is a standard phone-number user.
func IsUser(jid types.JID) bool {
	return jid.Server == types.DefaultUserServer || jid.Server == types.LegacyUserServer
}

// IsLIDUser reports whether jid is a hidden-identity (LID) user.
func IsLIDUser(jid types.JID) bool {
	return jid.Server == types.HiddenUserServer
}

// IsGroup reports whether jid is a group chat.
func IsGroup(jid types.JID) bool {
	return jid.Server == types.GroupServer
}

// IsBroadcast reports whether jid is a broadcast list, including the
// status broadcast.
func IsBroadcast(jid types.JID) bool {
	return jid.Server == types.BroadcastServer
}

// IsStatusBroadcast reports whether jid is the distinguished status
// broadcast address.
func IsStatusBroadcast(jid types.JID) bool {
	return jid.Server == types.BroadcastServer && jid.User == types.StatusBroadcastJID.User
}

// IsNewsletter reports whether jid is a newsletter channel.
func IsNewsletter(jid types.JID) bool {
	return jid.Server == types.NewsletterServer
}

// IsBot reports whether jid addresses a Meta AI bot, either on the
// dedicated bot server or through the legacy phone-number account.
func IsBot(jid types.JID) bool {
	return jid.Server == types.BotServer || (jid.User == metaAIBotUser && IsUser(jid))
}

// NormalizedUser strips the device and agent qualifiers from jid and maps
// the legacy user server onto the default one, so that any two JIDs for
// the same account compare equal.
func NormalizedUser(jid types.JID) types.JID {
	jid = jid.ToNonAD()
	if jid.Server == types.LegacyUserServer {
		jid.Server = types.DefaultUserServer
	}
	return jid
}

// SameUser reports whether a and b denote the same account, ignoring
// device suffixes and agent qualifiers.
func SameUser(a, b types.JID) bool {
	return NormalizedUser(a) == NormalizedUser(b)
}
