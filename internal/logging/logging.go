// Package logging sets up the process-wide structured logger. Callers
// attach room_id/player_id/phase fields instead of formatting them into
// the message string.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console-writer zerolog.Logger for local/dev use. Production
// deployment concerns (log shipping, sampling) are transport/ops concerns
// and stay out of scope.
func New(debug bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ForRoom returns a child logger with the room id preattached, the shape
// every room-scoped component in this repo logs through.
func ForRoom(base zerolog.Logger, roomID string) zerolog.Logger {
	return base.With().Str("room_id", roomID).Logger()
}
