package core

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
)

// InviteCodeLength is the fixed length of a room invite code.
const InviteCodeLength = 6

// inviteCodeCharset is uppercase base36, easy to read out loud.
const inviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewInviteCode returns a random 6-character uppercase alphanumeric
// code for out-of-band room sharing. Uniqueness against existing rooms
// is the caller's responsibility.
func NewInviteCode() (string, error) {
	return newInviteCode(rand.Reader)
}

func newInviteCode(r io.Reader) (string, error) {
	// Bytes at or above the largest multiple of the charset size are
	// redrawn so every character is equally likely.
	const limit = 256 - 256%len(inviteCodeCharset)
	out := make([]byte, InviteCodeLength)
	var b [1]byte
	for i := 0; i < InviteCodeLength; {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		if int(b[0]) >= limit {
			continue
		}
		out[i] = inviteCodeCharset[int(b[0])%len(inviteCodeCharset)]
		i++
	}
	return string(out), nil
}

// NormalizeInviteCode upper-cases and trims user input so lookups are
// case-insensitive on input. Stored codes are always uppercase.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
