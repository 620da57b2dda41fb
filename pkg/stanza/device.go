package stanza

import (
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// Platform is the device class a message was sent from, inferred from the
// shape of its message ID.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
	PlatformUnknown Platform = "unknown"
)

// DeviceFromMessageID infers the originating platform from a message ID.
// Each client generates IDs with a recognizable length and prefix.
func DeviceFromMessageID(id types.MessageID) Platform {
	s := string(id)
	switch {
	case len(s) == 20 && strings.HasPrefix(s, "3A"):
		return PlatformIOS
	case len(s) == 22 && strings.HasPrefix(s, "3E"):
		return PlatformWeb
	case len(s) == 21 || len(s) == 32:
		return PlatformAndroid
	case strings.HasPrefix(s, "3F") || len(s) == 18:
		return PlatformDesktop
	default:
		return PlatformUnknown
	}
}
