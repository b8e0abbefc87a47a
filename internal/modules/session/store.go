package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/localstate"
)

var errNoExpiry = errors.New("token has no exp claim")

// Store owns the operator session. Reads are self-healing: a token that
// cannot be decoded, has no expiry or has expired is removed from storage the
// moment it is read.
type Store struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	log     *logrus.Entry
}

// NewStore creates a session store over storage.
func NewStore(storage Storage, log *logrus.Entry) *Store {
	return &Store{storage: storage, now: time.Now, log: log}
}

// Set persists a freshly issued token and the operator email. An empty email
// drops any stored one so the token's subject is reported instead.
func (s *Store) Set(token, email string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(localstate.KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if email == "" {
		if err := s.storage.Delete(localstate.KeyEmail); err != nil {
			return fmt.Errorf("drop stale email: %w", err)
		}
		return nil
	}
	if err := s.storage.Set(localstate.KeyEmail, email); err != nil {
		return fmt.Errorf("store email: %w", err)
	}
	return nil
}

// Clear forgets the token and email.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	if err := s.storage.Delete(localstate.KeyToken, localstate.KeyEmail); err != nil {
		s.log.WithError(err).Warn("failed to clear cached credentials")
	}
}

// Current returns the valid session, if any.
func (s *Store) Current() (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.storage.Get(localstate.KeyToken)
	if !ok || token == "" {
		return nil, false
	}
	sess, err := decode(token)
	if err != nil {
		s.log.WithError(err).Debug("discarding undecodable session token")
		s.clearLocked()
		return nil, false
	}
	if !sess.Valid(s.now()) {
		s.log.WithField("expired_at", sess.ExpiresAt).Debug("discarding expired session token")
		s.clearLocked()
		return nil, false
	}
	if email, ok := s.storage.Get(localstate.KeyEmail); ok && email != "" {
		sess.SubjectEmail = email
	}
	return sess, true
}

// IsValid reports whether a valid session exists.
func (s *Store) IsValid() bool {
	_, ok := s.Current()
	return ok
}

// Token returns the bearer token of the valid session, or "".
func (s *Store) Token() string {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.Token
}

// decode reads the payload segment without verifying the signature; the
// server is the verifier, the client only needs the expiry and identity.
func decode(token string) (*Session, error) {
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == 0 {
		return nil, errNoExpiry
	}
	return &Session{
		Token:        token,
		SubjectEmail: claims.Subject,
		UserID:       claims.UID,
		Roles:        claims.Roles,
		ExpiresAt:    time.Unix(claims.ExpiresAt, 0),
	}, nil
}
