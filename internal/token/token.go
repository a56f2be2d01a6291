// Package token issues and verifies the opaque, room-scoped session
// tokens clients present on every authenticated command.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid covers a malformed, mis-signed, expired, or wrong-room
// token; callers map it onto wire.ErrorUnauthorized without inspecting
// which case it was, since a client can't act differently on any of
// them.
var ErrInvalid = errors.New("token: invalid")

// refreshWindow is how close to expiry a token must be before Refresh
// re-issues it.
const refreshWindow = 5 * time.Minute

// claims is the custom claim set embedded in every token: subject is the
// player id (jwt.RegisteredClaims.Subject), roomId and sessionId are
// this package's own fields.
type claims struct {
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Claims is the verified, caller-facing result of Verify.
type Claims struct {
	PlayerID  string
	RoomID    string
	SessionID string
	ExpiresAt time.Time
}

// Service issues and verifies tokens signed with a single symmetric key.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

// NewService builds a Service. ttl is the lifetime assigned to freshly
// issued tokens (24h per the default config).
func NewService(signingKey []byte, ttl time.Duration) *Service {
	return &Service{signingKey: signingKey, ttl: ttl}
}

// Issue mints a token binding playerID to roomID and sessionID.
func (s *Service) Issue(playerID, roomID, sessionID string, now time.Time) (string, error) {
	c := claims{
		RoomID:    roomID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.signingKey)
}

// Verify checks signature and expiry, and that the token is scoped to
// roomID. A foreign-room token is rejected even if otherwise valid.
func (s *Service) Verify(tokenString, roomID string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.signingKey, nil
	})
	if err != nil {
		return Claims{}, ErrInvalid
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalid
	}
	if c.RoomID != roomID {
		return Claims{}, ErrInvalid
	}

	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalid
	}

	return Claims{
		PlayerID:  c.Subject,
		RoomID:    c.RoomID,
		SessionID: c.SessionID,
		ExpiresAt: exp.Time,
	}, nil
}

// NeedsRefresh reports whether claims with the given expiry are within
// the refresh window of a caller-supplied now.
func NeedsRefresh(expiresAt, now time.Time) bool {
	return expiresAt.Sub(now) <= refreshWindow
}

// Refresh re-issues a token for the same subject/room/session with a fresh
// lifetime starting at now. It does not consult the refresh window itself;
// callers check NeedsRefresh first.
func (s *Service) Refresh(c Claims, now time.Time) (string, error) {
	return s.Issue(c.PlayerID, c.RoomID, c.SessionID, now)
}
