// Package preferences keeps operator display preferences next to the session
// in the local state file.
package preferences

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/localstate"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts light or dark in any case.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", apperr.ValidationErr(fmt.Sprintf("Theme %q must be light or dark.", s), map[string]string{"theme": "must be light or dark"})
}

// Storage is the key/value store the preferences live in.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

type Service struct {
	storage Storage
}

func NewService(storage Storage) *Service {
	return &Service{storage: storage}
}

// Theme returns the stored theme; anything unreadable is light.
func (s *Service) Theme() Theme {
	v, ok := s.storage.Get(localstate.KeyTheme)
	if !ok {
		return Light
	}
	t, err := ParseTheme(v)
	if err != nil {
		return Light
	}
	return t
}

func (s *Service) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	if err := s.storage.Set(localstate.KeyTheme, string(t)); err != nil {
		return fmt.Errorf("store theme: %w", err)
	}
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (s *Service) Toggle() (Theme, error) {
	next := Dark
	if s.Theme() == Dark {
		next = Light
	}
	return next, s.SetTheme(next)
}
