package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
	"github.com/georgemunganga/stockdesk/internal/validation"
)

const invalidCredentialsMsg = "Invalid email or password. Please try again."

type service struct {
	gw       *gateway.Gateway
	sessions *session.Store
	log      *logrus.Entry
}

// NewService creates a new auth service.
func NewService(gw *gateway.Gateway, sessions *session.Store, log *logrus.Entry) Service {
	return &service{gw: gw, sessions: sessions, log: log}
}

func (s *service) Login(ctx context.Context, email, password string) (*session.Session, error) {
	req := LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := s.gw.Post(ctx, "/auth/login", req, &resp); err != nil {
		s.log.WithError(err).WithField("email", req.Email).Warn("login rejected")
		return nil, loginFailure(err)
	}
	if resp.Email == "" {
		resp.Email = req.Email
	}
	if err := s.sessions.Set(resp.Token, resp.Email); err != nil {
		return nil, &apperr.Error{Kind: apperr.Remote, PublicMsg: "The server did not return a usable token.", Err: err}
	}

	sess, ok := s.sessions.Current()
	if !ok {
		return nil, &apperr.Error{Kind: apperr.Remote, PublicMsg: "The server did not return a usable token."}
	}
	s.log.WithFields(logrus.Fields{"email": sess.SubjectEmail, "expires_at": sess.ExpiresAt}).Info("signed in")
	return sess, nil
}

// loginFailure keeps a message the server wrote itself and replaces the
// generic ones with the credentials hint.
func loginFailure(err error) error {
	ae, ok := apperr.As(err)
	if !ok {
		return err
	}
	switch ae.PublicMsg {
	case "", gateway.SessionExpiredMessage, http.StatusText(ae.Status):
		return &apperr.Error{Kind: ae.Kind, Status: ae.Status, PublicMsg: invalidCredentialsMsg, Err: err}
	}
	return err
}

func (s *service) Logout() {
	s.sessions.Clear()
	s.log.Info("signed out")
}

func (s *service) WhoAmI() (*session.Session, bool) {
	return s.sessions.Current()
}
