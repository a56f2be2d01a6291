// Package ids generates the opaque identifiers used throughout the room
// engine: 16-byte random hex ids for rooms, players and actions, and
// 6-character room codes drawn from an ambiguity-free alphabet.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// roomCodeAlphabet excludes 0, 1, I and O so codes are easy to read aloud
// and type back in on a phone keyboard.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 6

// New returns a 16-byte random id rendered as 32 lowercase hex characters.
// It is backed by google/uuid's random generator rather than a bespoke
// crypto/rand call so one source of entropy serves ids and (elsewhere)
// anything that wants RFC-4122 ids too.
func New() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// NewRoomCode returns a random 6-character code from roomCodeAlphabet.
// Callers are responsible for retrying on collision (the room store does
// this atomically via SetNX on room_code:<code>).
func NewRoomCode() (string, error) {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(roomCodeLength)
	for _, b := range buf {
		sb.WriteByte(roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
	}
	return sb.String(), nil
}

// ValidRoomCode reports whether s has the shape of a room code: exactly
// roomCodeLength characters, all drawn from roomCodeAlphabet. It does not
// check whether the code is actually reserved.
func ValidRoomCode(s string) bool {
	if len(s) != roomCodeLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(roomCodeAlphabet, r) {
			return false
		}
	}
	return true
}
