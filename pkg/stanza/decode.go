// Package stanza decodes and decrypts inbound message stanzas.
//
// An inbound message arrives as a binary node whose addressing attributes
// identify the conversation and author, and whose child elements carry the
// encrypted payloads. Classify resolves the addressing into a message
// envelope; Decryptor.Prepare plus PendingMessage.Decrypt turn the payloads
// into a decoded message, isolating failures per payload so that one bad
// ciphertext never breaks an inbound batch.
package stanza

import (
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"

	"waingest/pkg/waid"
)

// Classify inspects the addressing attributes of a message stanza and
// resolves the conversation identity, the author, the sender used for
// cryptographic session lookup and the logical message type. ownID and
// ownLID are the local device's phone-number and LID identities.
//
// It returns a ProtocolError when the stanza cannot be attributed to any
// valid chat and author. No I/O is performed.
func Classify(node *waBinary.Node, ownID, ownLID types.JID) (*ClassifiedMessage, error) {
	ag := node.AttrGetter()

	msgID := types.MessageID(ag.String("id"))
	from := ag.JID("from")
	timestamp := ag.UnixTime("t")
	participant := ag.OptionalJID("participant")
	recipient := ag.OptionalJID("recipient")
	if !ag.OK() {
		return nil, newProtocolError(NackParsingError, "failed to parse message attributes: %v", ag.Error())
	}

	isMe := func(jid types.JID) bool { return waid.SameUser(jid, ownID) }
	isMeLID := func(jid types.JID) bool { return waid.SameUser(jid, ownLID) }

	var msgType MessageType
	var chatID, author types.JID

	switch {
	case waid.IsUser(from) || waid.IsLIDUser(from):
		if recipient != nil && !waid.IsBot(*recipient) {
			if !isMe(from) && !isMeLID(from) {
				return nil, newProtocolError(NackUnrecognizedStanza, "recipient present, but msg not from me")
			}
			chatID = *recipient
		} else {
			chatID = from
		}
		msgType = MessageTypeChat
		author = from
	case waid.IsGroup(from):
		if participant == nil {
			return nil, newProtocolError(NackUnrecognizedStanza, "no participant in group message")
		}
		msgType = MessageTypeGroup
		author = *participant
		chatID = from
	case waid.IsBroadcast(from):
		if participant == nil {
			return nil, newProtocolError(NackUnrecognizedStanza, "no participant in group message")
		}
		participantIsMe := isMe(*participant)
		if waid.IsStatusBroadcast(from) {
			if participantIsMe {
				msgType = MessageTypeDirectPeerStatus
			} else {
				msgType = MessageTypeOtherStatus
			}
		} else {
			if participantIsMe {
				msgType = MessageTypePeerBroadcast
			} else {
				msgType = MessageTypeOtherBroadcast
			}
		}
		chatID = from
		author = *participant
	case waid.IsNewsletter(from):
		msgType = MessageTypeNewsletter
		chatID = from
		author = from
	default:
		return nil, newProtocolError(NackUnrecognizedStanzaType, "unknown message type")
	}

	// The effective sender is the participant when present, the from
	// address otherwise. Newsletters have no individual sender identity
	// and flag self-sent messages explicitly instead.
	effectiveSender := from
	if participant != nil {
		effectiveSender = *participant
	}
	var fromMe bool
	switch {
	case waid.IsNewsletter(from):
		// Any is_sender value marks a self-sent post; the flag is simply
		// absent otherwise.
		fromMe = ag.OptionalString("is_sender") != ""
	case waid.IsLIDUser(from):
		fromMe = isMeLID(effectiveSender)
	default:
		fromMe = isMe(effectiveSender)
	}

	key := MessageKey{
		RemoteJID:      chatID,
		FromMe:         fromMe,
		ID:             msgID,
		Participant:    participant,
		SenderLID:      ag.OptionalJID("sender_lid"),
		SenderPN:       ag.OptionalJID("sender_pn"),
		ParticipantLID: ag.OptionalJID("participant_lid"),
	}
	if msgType == MessageTypeNewsletter {
		key.NewsletterServerID = types.MessageServerID(ag.OptionalInt("server_id"))
	}

	env := &MessageEnvelope{
		Key:              key,
		MessageTimestamp: timestamp,
		PushName:         ag.OptionalString("notify"),
		Broadcast:        waid.IsBroadcast(from),
		Newsletter:       waid.IsNewsletter(from),
	}
	if fromMe {
		status := waWeb.WebMessageInfo_SERVER_ACK
		env.Status = &status
	} else {
		env.Platform = DeviceFromMessageID(msgID)
	}

	sender := chatID
	if msgType == MessageTypeChat {
		sender = author
	}

	return &ClassifiedMessage{
		Envelope: env,
		Type:     msgType,
		Author:   author,
		Sender:   sender,
		Category: ag.OptionalString("category"),
	}, nil
}
