// Package privacy masks user identifiers before they reach log output.
package privacy

import (
	"strings"

	"waingest/internal/constants"
)

// MaskJID masks a JID showing only the trailing digits of the user part,
// keeping the server so the identity namespace stays visible.
// Example: "1234567890@s.whatsapp.net" -> "******7890@s.whatsapp.net"
func MaskJID(jid string) string {
	if jid == "" {
		return ""
	}

	at := strings.LastIndex(jid, "@")
	if at < 0 {
		return maskTail(jid, constants.DefaultJIDMaskLength)
	}

	return maskTail(jid[:at], constants.DefaultJIDMaskLength) + jid[at:]
}

// MaskMessageID masks a message ID while keeping a short prefix for
// correlation during debugging.
// Example: "3EB0FEF1234567890ABCDE" -> "3EB0FEF1**************"
func MaskMessageID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= constants.DefaultMessageIDLength {
		return strings.Repeat("*", len(id))
	}
	return id[:constants.DefaultMessageIDLength] + strings.Repeat("*", len(id)-constants.DefaultMessageIDLength)
}

func maskTail(s string, visible int) string {
	if len(s) <= visible {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-visible) + s[len(s)-visible:]
}
