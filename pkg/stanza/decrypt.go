package stanza

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waVnameCert"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"

	"waingest/pkg/waid"
)

// SignalRepository is the injected cryptographic session layer. Group
// decryption is keyed by the group identity plus the author; pairwise
// decryption by the counterpart identity directly. The repository is the
// only shared resource between concurrent stanzas and must serialize its
// own internal state.
type SignalRepository interface {
	DecryptGroupMessage(ctx context.Context, group, author types.JID, ciphertext []byte) ([]byte, error)
	DecryptMessage(ctx context.Context, jid types.JID, encType string, ciphertext []byte) ([]byte, error)
	ProcessSenderKeyDistributionMessage(ctx context.Context, author types.JID, skdm *waE2E.SenderKeyDistributionMessage) error
}

// Decryptor turns classified message stanzas into decoded envelopes.
// It is safe for concurrent use across stanzas.
type Decryptor struct {
	repo   SignalRepository
	logger *logrus.Logger
}

func NewDecryptor(repo SignalRepository, logger *logrus.Logger) *Decryptor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Decryptor{repo: repo, logger: logger}
}

// Prepare classifies the stanza and returns a pending message whose
// Decrypt method attempts every embedded payload. A ProtocolError here
// means the stanza is unattributable and must be dropped.
func (d *Decryptor) Prepare(node *waBinary.Node, ownID, ownLID types.JID) (*PendingMessage, error) {
	cm, err := Classify(node, ownID, ownLID)
	if err != nil {
		return nil, err
	}
	return &PendingMessage{
		ClassifiedMessage: cm,
		node:              node,
		decryptor:         d,
	}, nil
}

// PendingMessage is a classified stanza whose payloads have not been
// decrypted yet.
type PendingMessage struct {
	*ClassifiedMessage

	node      *waBinary.Node
	decryptor *Decryptor
}

// decryptResult accumulates the outcome of one decrypt pass. It is applied
// to the envelope in one step once every child element has been attempted,
// so a partially processed stanza never leaks out.
type decryptResult struct {
	verifiedBizName string
	multicast       bool
	metaInfo        *MetaInfo
	botInfo         *BotEditInfo

	message      *waE2E.Message
	decryptables int
	stubType     waWeb.WebMessageInfo_StubType
	stubParams   []string
}

func (r *decryptResult) fail(err error) {
	r.stubType = waWeb.WebMessageInfo_CIPHERTEXT
	r.stubParams = []string{err.Error()}
}

// merge folds a decoded payload into the accumulated message. Later
// payloads win on overlapping fields; embedded messages merge recursively.
// A successful payload also clears any stub state left by an earlier
// failing sibling, so the final envelope reflects the latest outcome in
// document order.
func (r *decryptResult) merge(msg *waE2E.Message) {
	if r.message != nil {
		proto.Merge(r.message, msg)
	} else {
		r.message = msg
	}
	r.stubType = 0
	r.stubParams = nil
}

func (r *decryptResult) apply(env *MessageEnvelope) {
	if r.verifiedBizName != "" {
		env.VerifiedBizName = r.verifiedBizName
	}
	if r.multicast {
		env.Multicast = true
	}
	if r.metaInfo != nil {
		env.MetaInfo = r.metaInfo
	}
	if r.botInfo != nil {
		env.BotInfo = r.botInfo
	}
	env.Message = r.message
	env.MessageStubType = r.stubType
	env.MessageStubParameters = r.stubParams
}

// Decrypt attempts every payload embedded in the stanza exactly once, in
// document order, and commits the outcome to the envelope. It always
// completes: decryption failures are captured into the envelope's stub
// fields and logged, never returned, so one malformed message cannot break
// a batch of inbound stanzas. The context is passed through to the session
// repository; no timeout is imposed at this layer.
func (p *PendingMessage) Decrypt(ctx context.Context) {
	var result decryptResult
	for _, child := range p.node.GetChildren() {
		p.handleChild(ctx, &result, child)
	}
	if result.decryptables == 0 {
		result.stubType = waWeb.WebMessageInfo_CIPHERTEXT
		result.stubParams = []string{noMessageFoundText}
	}
	result.apply(p.Envelope)
}

func (p *PendingMessage) handleChild(ctx context.Context, result *decryptResult, child waBinary.Node) {
	content, _ := child.Content.([]byte)

	switch child.Tag {
	case "verified_name":
		if content != nil {
			p.parseVerifiedName(result, content)
		}
		return
	case "multicast":
		if content != nil {
			result.multicast = true
		}
		return
	case "meta":
		if content != nil {
			p.parseMetaInfo(result, child)
		}
		return
	case "bot":
		if content != nil {
			p.parseBotInfo(result, child)
		}
		return
	case "enc", "plaintext":
		if content == nil {
			return
		}
	default:
		return
	}

	result.decryptables++

	plaintext, err := p.decryptPayload(ctx, child, content)
	if err != nil {
		p.logDecryptFailure(err)
		result.fail(err)
		return
	}

	var msg waE2E.Message
	if err := proto.Unmarshal(plaintext, &msg); err != nil {
		p.logDecryptFailure(err)
		result.fail(err)
		return
	}

	decoded := &msg
	if inner := decoded.GetDeviceSentMessage().GetMessage(); inner != nil {
		decoded = inner
	}

	if skdm := decoded.GetSenderKeyDistributionMessage(); skdm != nil {
		// A failure here only affects future group messages from this
		// author; the payload itself may still be usable.
		if err := p.decryptor.repo.ProcessSenderKeyDistributionMessage(ctx, p.Author, skdm); err != nil {
			p.decryptor.logger.WithFields(logrus.Fields{
				"key": p.Envelope.Key,
			}).WithError(err).Error("failed to process sender key distribution message")
		}
	}

	result.merge(decoded)
}

// decryptPayload resolves the cryptographic sub-type of an enc or
// plaintext element and obtains the unpadded plaintext for it.
func (p *PendingMessage) decryptPayload(ctx context.Context, child waBinary.Node, content []byte) ([]byte, error) {
	encType := "plaintext"
	if child.Tag == "enc" {
		encType = child.AttrGetter().OptionalString("type")
	}

	switch encType {
	case "skmsg":
		buf, err := p.decryptor.repo.DecryptGroupMessage(ctx, p.Sender, p.Author, content)
		if err != nil {
			return nil, err
		}
		return unpadRandomMax16(buf)
	case "pkmsg", "msg":
		// Group and broadcast payloads still decrypt against the author's
		// individual session, even though routing used the chat identity.
		jid := p.Author
		if waid.IsUser(p.Sender) {
			jid = p.Sender
		}
		buf, err := p.decryptor.repo.DecryptMessage(ctx, jid, encType, content)
		if err != nil {
			return nil, err
		}
		return unpadRandomMax16(buf)
	case "plaintext":
		return content, nil
	default:
		return nil, &UnknownPayloadTypeError{Type: encType}
	}
}

// parseVerifiedName extracts the verified business name from a signed
// certificate. Certificate decode failures are logged and ignored; the
// element is metadata and never counts against the decryptable payloads.
func (p *PendingMessage) parseVerifiedName(result *decryptResult, content []byte) {
	var cert waVnameCert.VerifiedNameCertificate
	if err := proto.Unmarshal(content, &cert); err != nil {
		p.decryptor.logger.WithField("key", p.Envelope.Key).WithError(err).Debug("failed to parse verified name certificate")
		return
	}
	var details waVnameCert.VerifiedNameCertificate_Details
	if err := proto.Unmarshal(cert.GetDetails(), &details); err != nil {
		p.decryptor.logger.WithField("key", p.Envelope.Key).WithError(err).Debug("failed to parse verified name certificate details")
		return
	}
	result.verifiedBizName = details.GetVerifiedName()
}

func (p *PendingMessage) parseMetaInfo(result *decryptResult, child waBinary.Node) {
	ag := child.AttrGetter()
	info := &MetaInfo{
		TargetID: types.MessageID(ag.OptionalString("target_id")),
	}
	if target := ag.OptionalJID("target_sender_jid"); target != nil {
		normalized := waid.NormalizedUser(*target)
		info.TargetSender = &normalized
	}
	result.metaInfo = info
}

func (p *PendingMessage) parseBotInfo(result *decryptResult, child waBinary.Node) {
	ag := child.AttrGetter()
	edit := ag.OptionalString("edit")
	if edit == "" {
		return
	}
	senderTS, _ := strconv.ParseInt(ag.OptionalString("sender_timestamp_ms"), 10, 64)
	result.botInfo = &BotEditInfo{
		EditType:              edit,
		EditTargetID:          types.MessageID(ag.OptionalString("edit_target_id")),
		EditSenderTimestampMS: senderTS,
	}
}

func (p *PendingMessage) logDecryptFailure(err error) {
	p.decryptor.logger.WithFields(logrus.Fields{
		"key": p.Envelope.Key,
	}).WithError(err).Error("failed to decrypt message")
}
