package stanza

import (
	"errors"
	"fmt"
)

// noMessageFoundText is recorded in the stub parameters when a stanza
// carries no decryptable payload at all.
const noMessageFoundText = "Message absent from node"

// ProtocolError reports a stanza whose addressing is inconsistent or
// unrecognized. It aborts processing of the stanza entirely; the caller is
// expected to map it to a NACK reason and drop the stanza.
type ProtocolError struct {
	Reason string
	Nack   NackReason
}

func (e *ProtocolError) Error() string {
	return e.Reason
}

func newProtocolError(nack NackReason, format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{
		Reason: fmt.Sprintf(format, args...),
		Nack:   nack,
	}
}

// IsProtocolError reports whether err is a classification-stage failure.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// UnknownPayloadTypeError reports an enc element whose type attribute is
// not one of the supported cryptographic sub-types.
type UnknownPayloadTypeError struct {
	Type string
}

func (e *UnknownPayloadTypeError) Error() string {
	return fmt.Sprintf("unknown e2e payload type: %s", e.Type)
}
