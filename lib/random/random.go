package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// MinTokenBytes is the lowest entropy accepted for redemption tokens.
	MinTokenBytes = 16
	// MaxTokenBytes keeps the hex form within the 256 characters a scan request accepts.
	MaxTokenBytes = 128
)

// Hex returns n cryptographically random bytes as a lowercase hex string.
// n is clamped to [MinTokenBytes, MaxTokenBytes].
func Hex(n int) (string, error) {
	if n < MinTokenBytes {
		n = MinTokenBytes
	}
	if n > MaxTokenBytes {
		n = MaxTokenBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
