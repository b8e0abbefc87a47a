// Package apitest provides an in-process stand-in for the inventory API for
// package tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Sessions is a gateway.SessionSource with a fixed token.
type Sessions struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func NewSessions(token string) *Sessions { return &Sessions{token: token} }

func (s *Sessions) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Sessions) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared++
}

// Cleared returns how many times the session was cleared.
func (s *Sessions) Cleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// QuietLog returns a logger that writes nowhere.
func QuietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// NewRouter returns the router a test mounts its fake endpoints on. Routes
// are relative to the /api base path.
func NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	return r
}

// Server starts routes under /api and returns a gateway pointed at it.
func Server(t testing.TB, routes chi.Router) (*gateway.Gateway, *Sessions) {
	t.Helper()
	root := chi.NewRouter()
	root.Mount("/api", routes)
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)

	sess := NewSessions("test-token")
	gw := gateway.New(gateway.Config{BaseURL: srv.URL + "/api"}, sess, nil, QuietLog())
	return gw, sess
}

// Respond writes body as JSON.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Decode reads a JSON request body into dst.
func Decode(t testing.TB, r *http.Request, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}
