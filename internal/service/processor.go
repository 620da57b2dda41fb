// Package service hosts the per-stanza ingest pipeline: classify, decrypt,
// record and persist.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	waBinary "go.mau.fi/whatsmeow/binary"
	"go.mau.fi/whatsmeow/types"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/proto"

	"waingest/internal/errors"
	"waingest/internal/metrics"
	"waingest/internal/models"
	"waingest/internal/privacy"
	"waingest/internal/tracing"
	"waingest/pkg/stanza"
)

// Database persists completed envelopes.
type Database interface {
	SaveMessage(ctx context.Context, msg *models.StoredMessage) error
}

// Processor runs the inbound pipeline for one stanza at a time. Distinct
// stanzas may be processed concurrently; the session repository injected
// into the decryptor is the only shared state.
type Processor struct {
	decryptor *stanza.Decryptor
	db        Database
	logger    *logrus.Logger
	ownID     types.JID
	ownLID    types.JID
}

func NewProcessor(repo stanza.SignalRepository, db Database, ownID, ownLID types.JID, logger *logrus.Logger) *Processor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Processor{
		decryptor: stanza.NewDecryptor(repo, logger),
		db:        db,
		logger:    logger,
		ownID:     ownID,
		ownLID:    ownLID,
	}
}

// ProcessStanza classifies and decrypts one inbound message stanza and
// persists the completed envelope.
//
// A nil envelope with a non-nil error means the stanza was unattributable
// and must be dropped; stanza.NackReasonFor maps the error to the reason
// code to report upstream. A non-nil envelope is always complete: payload
// decryption failures are captured in its stub fields, not returned.
func (p *Processor) ProcessStanza(ctx context.Context, node *waBinary.Node) (*stanza.MessageEnvelope, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessStanza")
	defer span.End()

	start := time.Now()

	pending, err := p.decryptor.Prepare(node, p.ownID, p.ownLID)
	if err != nil {
		metrics.IncrementCounter("stanza_rejected_total",
			map[string]string{"nack": fmt.Sprintf("%d", stanza.NackReasonFor(err))},
			"Inbound stanzas rejected at classification")
		tracing.RecordError(ctx, err)
		p.logger.WithError(err).Warn("Rejected unattributable stanza")
		return nil, errors.Wrap(err, errors.ErrCodeProtocolViolation, "failed to classify stanza")
	}

	env := pending.Envelope
	span.SetAttributes(
		attribute.String("message.id", privacy.MaskMessageID(string(env.Key.ID))),
		attribute.String("message.chat", privacy.MaskJID(env.Key.RemoteJID.String())),
		attribute.String("message.type", string(pending.Type)),
		attribute.Bool("message.from_me", env.Key.FromMe),
	)

	pending.Decrypt(ctx)

	outcome := "ok"
	if env.MessageStubType != 0 {
		outcome = "stub"
	}
	metrics.IncrementCounter("stanza_decrypted_total",
		map[string]string{"type": string(pending.Type), "outcome": outcome},
		"Inbound stanzas processed by decryption outcome")
	metrics.RecordTimer("stanza_decrypt_duration", time.Since(start),
		map[string]string{"type": string(pending.Type)},
		"Per-stanza decrypt pass duration")

	if err := p.persist(ctx, pending); err != nil {
		tracing.RecordError(ctx, err)
		p.logger.WithFields(logrus.Fields{
			"chat":   privacy.MaskJID(env.Key.RemoteJID.String()),
			"msg_id": privacy.MaskMessageID(string(env.Key.ID)),
		}).WithError(err).Error("Failed to persist message")
		return env, err
	}

	p.logger.WithFields(logrus.Fields{
		"chat":    privacy.MaskJID(env.Key.RemoteJID.String()),
		"msg_id":  privacy.MaskMessageID(string(env.Key.ID)),
		"type":    pending.Type,
		"outcome": outcome,
	}).Debug("Processed inbound message")

	return env, nil
}

func (p *Processor) persist(ctx context.Context, pending *stanza.PendingMessage) error {
	env := pending.Envelope

	var plaintext []byte
	if env.Message != nil {
		var err error
		plaintext, err = proto.Marshal(env.Message)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInvalidProtobuf, "failed to marshal decoded message")
		}
	}

	stubParams, err := models.MarshalStubParams(env.MessageStubParameters)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode stub parameters")
	}

	stored := &models.StoredMessage{
		ChatJID:     env.Key.RemoteJID.String(),
		MsgID:       string(env.Key.ID),
		SenderJID:   pending.Author.String(),
		FromMe:      env.Key.FromMe,
		Timestamp:   env.MessageTimestamp,
		PushName:    env.PushName,
		Platform:    string(env.Platform),
		MessageType: string(pending.Type),
		StubType:    int(env.MessageStubType),
		StubParams:  stubParams,
		Plaintext:   plaintext,
	}

	if err := p.db.SaveMessage(ctx, stored); err != nil {
		return errors.NewDatabaseError("save message", err)
	}
	return nil
}
