package auth

import (
	"context"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// Service defines the interface for operator sign-in.
type Service interface {
	// Login exchanges credentials for a token and stores the session.
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout()
	WhoAmI() (*session.Session, bool)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is what the API returns for a successful sign-in.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	Email     string `json:"email"`
}
