package stanza

import (
	"fmt"
)

// maxPadding is the largest random padding a sending device appends to a
// plaintext before encryption.
const maxPadding = 16

// unpadRandomMax16 strips the trailing random padding from a decrypted
// payload. The last byte holds the pad length; the pad content itself is
// random and ignored.
func unpadRandomMax16(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("unpad given empty bytes")
	}
	padLen := int(data[len(data)-1])
	if padLen > len(data) {
		return nil, fmt.Errorf("unpad given %d bytes, but pad is %d", len(data), padLen)
	}
	if padLen > maxPadding {
		return nil, fmt.Errorf("pad length %d exceeds maximum of %d", padLen, maxPadding)
	}
	return data[:len(data)-padLen], nil
}
