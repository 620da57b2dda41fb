package stanza

import (
	"errors"
)

// NackReason is a protocol-level negative-acknowledgment code reported
// upstream when an inbound stanza has to be rejected.
type NackReason int

const (
	NackParsingError                 NackReason = 487
	NackUnrecognizedStanza           NackReason = 488
	NackUnrecognizedStanzaClass      NackReason = 489
	NackUnrecognizedStanzaType       NackReason = 490
	NackInvalidProtobuf              NackReason = 491
	NackInvalidHostedCompanionStanza NackReason = 493
	NackMissingMessageSecret         NackReason = 495
	NackSignalErrorOldCounter        NackReason = 496
	NackMessageDeletedOnPeer         NackReason = 499
	NackUnhandledError               NackReason = 500
	NackUnsupportedAdminRevoke       NackReason = 550
	NackUnsupportedLIDGroup          NackReason = 551
	NackDBOperationFailed            NackReason = 552
)

// NackReasonFor maps a processing error to the reason code to report
// upstream. Classification failures carry their own code; anything else
// is an unhandled error.
func NackReasonFor(err error) NackReason {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Nack
	}
	return NackUnhandledError
}
