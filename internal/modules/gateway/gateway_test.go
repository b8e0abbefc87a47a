package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

type fakeSessions struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeSessions) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeSessions) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
}

type fakeRedirect struct{ calls int }

func (f *fakeRedirect) RedirectToLogin() { f.calls++ }

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestGateway(t *testing.T, h http.HandlerFunc) (*Gateway, *fakeSessions, *fakeRedirect) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	sess := &fakeSessions{token: "tok-123"}
	redir := &fakeRedirect{}
	g := New(Config{BaseURL: srv.URL + "/api"}, sess, redir, quietLog())
	return g, sess, redir
}

func TestDo_AttachesBearerToProtectedPaths(t *testing.T) {
	var gotAuth, gotReqID, gotQuery string
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(HeaderRequestID)
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	err := g.Get(context.Background(), "/products", url.Values{"page": {"0"}, "size": {"10"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "page=0&size=10", gotQuery)
}

func TestDo_OmitsBearerOnExportPaths(t *testing.T) {
	var gotAuth string
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`%PDF-1.4`))
	})

	require.NoError(t, g.Get(context.Background(), "/products/export/pdf", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestDo_OmitsBearerWithoutSession(t *testing.T) {
	var sawAuth bool
	g, sess, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
	})
	sess.token = ""

	require.NoError(t, g.Get(context.Background(), "/orders", nil, nil))
	assert.False(t, sawAuth)
}

func TestDo_UnauthorizedClearsSessionAndRedirectsOnce(t *testing.T) {
	g, sess, redir := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	})

	err := g.Get(context.Background(), "/orders", nil, nil)
	require.Error(t, err)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Authority, ae.Kind)
	assert.Equal(t, "Token expired", ae.PublicMsg)
	assert.Equal(t, 1, sess.cleared)
	assert.Equal(t, 1, redir.calls)
	assert.Empty(t, sess.Token())
}

func TestDo_RemoteErrorsCarryServerMessage(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    apperr.Kind
		message string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Insufficient stock for Widget"}`, apperr.Remote, "Insufficient stock for Widget"},
		{"error field", http.StatusInternalServerError, `{"error":"boom"}`, apperr.Remote, "boom"},
		{"not found", http.StatusNotFound, `{"message":"Product not found"}`, apperr.NotFound, "Product not found"},
		{"plain text", http.StatusConflict, `SKU already exists`, apperr.Remote, "SKU already exists"},
		{"empty body", http.StatusBadGateway, ``, apperr.Remote, "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, sess, redir := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			err := g.Post(context.Background(), "/orders", map[string]string{"customerName": "A"}, nil)
			ae, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, ae.Kind)
			assert.Equal(t, tc.status, ae.Status)
			assert.Equal(t, tc.message, ae.PublicMsg)
			assert.Zero(t, sess.cleared)
			assert.Zero(t, redir.calls)
		})
	}
}

func TestDo_DecodesJSONAndSendsBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	g, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"id":9,"name":"Widget"}`))
	})

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	err := g.Put(context.Background(), "/products/9", map[string]string{"name": "Widget"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"name":"Widget"}`, string(gotBody))
	assert.Equal(t, int64(9), out.ID)
	assert.Equal(t, "Widget", out.Name)
}

func TestDo_TransportFailureIsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	sess := &fakeSessions{token: "tok"}
	g := New(Config{BaseURL: base}, sess, nil, quietLog())
	err := g.Get(context.Background(), "/products", nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Remote))
	assert.Zero(t, sess.cleared)
}

func TestIsExportPath(t *testing.T) {
	assert.True(t, IsExportPath("/products/export/csv"))
	assert.True(t, IsExportPath("/api/orders/export/excel?from=2026-01-01"))
	assert.True(t, IsExportPath("/analytics/export/pdf"))
	assert.False(t, IsExportPath("/products"))
	assert.False(t, IsExportPath("/products/export"))
	assert.False(t, IsExportPath("/orders/export/xml"))
}

func TestExportURL(t *testing.T) {
	g := New(Config{BaseURL: "http://api.local/api/"}, &fakeSessions{}, nil, quietLog())
	assert.Equal(t, "http://api.local/api/orders/export/csv", g.ExportURL("/orders/export/csv"))
}
