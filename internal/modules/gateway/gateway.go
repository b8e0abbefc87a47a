// Package gateway is the single HTTP boundary of the client. It attaches the
// session credential, classifies responses, and invalidates the session when
// the API rejects it.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

const (
	HeaderRequestID = "X-Request-ID"

	// SessionExpiredMessage is shown for a 401 that carried no message.
	SessionExpiredMessage = "Your session has expired. Please log in again."
	maxErrorBody          = 64 << 10
)

// SessionSource is the slice of the session store the gateway needs. Token
// returns "" when there is no valid session.
type SessionSource interface {
	Token() string
	Clear()
}

// Redirector forces the client back to the login view.
type Redirector interface {
	RedirectToLogin()
}

// Config holds gateway configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables throttling
	RateBurst  int
	HTTPClient *http.Client
}

// Gateway executes every API call of the client.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	sessions   SessionSource
	redirect   Redirector
	log        *logrus.Entry
}

// New creates a gateway. redirect may be nil when no view layer exists.
func New(cfg Config, sessions SessionSource, redirect Redirector, log *logrus.Entry) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Gateway{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		limiter:    limiter,
		sessions:   sessions,
		redirect:   redirect,
		log:        log,
	}
}

// ── Verbs ─────────────────────────────────────────────────────────────────────

func (g *Gateway) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return g.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (g *Gateway) Post(ctx context.Context, path string, body, out interface{}) error {
	return g.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (g *Gateway) Put(ctx context.Context, path string, body, out interface{}) error {
	return g.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (g *Gateway) Patch(ctx context.Context, path string, query url.Values, out interface{}) error {
	return g.Do(ctx, http.MethodPatch, path, query, nil, out)
}

// Delete sends an optional JSON body; the bulk product delete carries the id
// list in it.
func (g *Gateway) Delete(ctx context.Context, path string, body interface{}) error {
	return g.Do(ctx, http.MethodDelete, path, nil, body, nil)
}

// Do sends one request and decodes a JSON response into out (when non-nil).
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	raw, err := g.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.TransportErr(fmt.Errorf("decode %s %s: %w", method, path, err))
	}
	return nil
}

// send performs the request and returns the raw body of a 2xx response.
func (g *Gateway) send(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Export links are shareable; they never carry the credential.
	if !IsExportPath(path) {
		if token := g.sessions.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, apperr.TransportErr(fmt.Errorf("throttle: %w", err))
		}
	}

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"path":       path,
		}).WithError(err).Warn("api request failed")
		return nil, apperr.TransportErr(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.TransportErr(fmt.Errorf("read response: %w", err))
	}

	entry := g.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"latency":    time.Since(start),
	})

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		entry.Warn("api rejected credentials, ending session")
		// Clear and redirect before the caller sees the error; callers must not
		// assume any further rendering happens after this.
		g.sessions.Clear()
		if g.redirect != nil {
			g.redirect.RedirectToLogin()
		}
		return nil, apperr.AuthorityErr(serverMessage(raw, SessionExpiredMessage))
	case resp.StatusCode >= 400:
		entry.Warn("api request returned an error")
		return nil, apperr.RemoteErr(resp.StatusCode, serverMessage(raw, http.StatusText(resp.StatusCode)))
	}

	entry.Debug("api request")
	return raw, nil
}

// serverMessage extracts the API's own error text from a response body.
func serverMessage(raw []byte, fallback string) string {
	if len(raw) > maxErrorBody {
		raw = raw[:maxErrorBody]
	}
	if !gjson.ValidBytes(raw) {
		if text := strings.TrimSpace(string(raw)); text != "" && len(text) < 200 {
			return text
		}
		return fallback
	}
	for _, key := range []string{"message", "error"} {
		if v := gjson.GetBytes(raw, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return fallback
}
