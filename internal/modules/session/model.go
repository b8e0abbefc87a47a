package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Session is the authenticated operator identity derived from the API token.
type Session struct {
	Token        string    `json:"-"`
	SubjectEmail string    `json:"subject_email"`
	UserID       int64     `json:"user_id,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session has not yet expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}

// Claims mirrors the payload the API signs into its tokens: the subject is
// the operator email, uid and roles are custom claims.
type Claims struct {
	UID   int64    `json:"uid,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.StandardClaims
}
