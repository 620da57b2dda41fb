package stanza

import (
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"
)

// MessageType is the logical classification of an inbound message stanza.
// It drives how chat, author and sender are assigned; it is not persisted
// on the envelope.
type MessageType string

const (
	MessageTypeChat             MessageType = "chat"
	MessageTypeGroup            MessageType = "group"
	MessageTypeDirectPeerStatus MessageType = "direct_peer_status"
	MessageTypeOtherStatus      MessageType = "other_status"
	MessageTypePeerBroadcast    MessageType = "peer_broadcast"
	MessageTypeOtherBroadcast   MessageType = "other_broadcast"
	MessageTypeNewsletter       MessageType = "newsletter"
)

// MessageKey uniquely identifies a message within a chat.
type MessageKey struct {
	RemoteJID          types.JID             `json:"remoteJid"`
	FromMe             bool                  `json:"fromMe"`
	ID                 types.MessageID       `json:"id"`
	Participant        *types.JID            `json:"participant,omitempty"`
	SenderLID          *types.JID            `json:"senderLid,omitempty"`
	SenderPN           *types.JID            `json:"senderPn,omitempty"`
	ParticipantLID     *types.JID            `json:"participantLid,omitempty"`
	NewsletterServerID types.MessageServerID `json:"newsletterServerId,omitempty"`
}

// MetaInfo carries reply/quote targeting metadata from a meta child element.
type MetaInfo struct {
	TargetID     types.MessageID `json:"targetId"`
	TargetSender *types.JID      `json:"targetSender,omitempty"`
}

// BotEditInfo carries bot edit metadata from a bot child element. It is
// populated only when the element carries an edit attribute.
type BotEditInfo struct {
	EditType              string          `json:"editType"`
	EditTargetID          types.MessageID `json:"editTargetId"`
	EditSenderTimestampMS int64           `json:"editSenderTimestampMs"`
}

// MessageEnvelope is the fully-populated record for one inbound message.
//
// Classify creates it with the addressing fields filled in; a subsequent
// PendingMessage.Decrypt pass fills in the content fields. Once Decrypt
// returns the envelope is complete and must be treated as immutable.
type MessageEnvelope struct {
	Key              MessageKey `json:"key"`
	MessageTimestamp time.Time  `json:"messageTimestamp"`
	PushName         string     `json:"pushName,omitempty"`
	Broadcast        bool       `json:"broadcast"`
	Newsletter       bool       `json:"newsletter"`

	// Status is set to SERVER_ACK for self-sent messages, nil otherwise.
	Status *waWeb.WebMessageInfo_Status `json:"status,omitempty"`
	// Platform is the originating device class inferred from the message
	// ID. Only set for messages not sent by us.
	Platform Platform `json:"platform,omitempty"`

	VerifiedBizName string       `json:"verifiedBizName,omitempty"`
	Multicast       bool         `json:"multicast,omitempty"`
	MetaInfo        *MetaInfo    `json:"metaInfo,omitempty"`
	BotInfo         *BotEditInfo `json:"botInfo,omitempty"`

	// Message is the decoded payload. When a stanza carries several
	// decryptable elements their decoded messages are merged into one,
	// later elements winning on overlapping fields.
	Message *waE2E.Message `json:"message,omitempty"`

	// MessageStubType and MessageStubParameters are set when no payload
	// could be decrypted; the application shows a placeholder instead.
	MessageStubType       waWeb.WebMessageInfo_StubType `json:"messageStubType,omitempty"`
	MessageStubParameters []string                      `json:"messageStubParameters,omitempty"`
}

// ClassifiedMessage is the result of classifying a stanza, before any
// decryption has been attempted.
type ClassifiedMessage struct {
	// Envelope has its addressing fields populated and its content fields
	// still empty.
	Envelope *MessageEnvelope
	Type     MessageType
	// Author is the individual identity that sent the message.
	Author types.JID
	// Sender is the identity used for cryptographic session lookup: the
	// author for direct chats, the chat itself for group, broadcast and
	// newsletter messages.
	Sender types.JID
	// Category is the raw category attribute, if any.
	Category string
}
