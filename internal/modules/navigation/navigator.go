package navigation

import (
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
)

// Destination is a resolved view.
type Destination struct {
	Path      string
	Route     Route
	Params    map[string]string
	Export    bool   // a shareable export link; opened, never rendered
	Requested string // the path asked for when a redirect happened
}

// Redirected reports whether the destination differs from what was asked for.
func (d Destination) Redirected() bool {
	return d.Requested != "" && d.Requested != d.Path
}

// Param returns a path parameter such as "id".
func (d Destination) Param(key string) string {
	return d.Params[key]
}

// Navigator resolves paths through the route table and the guard and tracks
// the current view.
type Navigator struct {
	mu      sync.Mutex
	table   *table
	guard   *Guard
	current Destination
	log     *logrus.Entry
}

func NewNavigator(sessions SessionChecker, log *logrus.Entry) *Navigator {
	t := newTable()
	login, _, _ := t.match(PathLogin)
	return &Navigator{
		table:   t,
		guard:   NewGuard(sessions),
		current: Destination{Path: PathLogin, Route: login},
		log:     log,
	}
}

// Navigate moves to path. Unmatched paths fall back to the product list, and
// a blocked navigation lands on the login view; the attempted target is not
// remembered.
func (n *Navigator) Navigate(path string) Destination {
	dest := n.resolve(path)

	n.mu.Lock()
	n.current = dest
	n.mu.Unlock()

	if dest.Redirected() {
		n.log.WithFields(logrus.Fields{"requested": dest.Requested, "to": dest.Path}).Debug("navigation redirected")
	}
	return dest
}

// Enter navigates to path and fails when the guard sent the operator to the
// login view instead.
func (n *Navigator) Enter(path string) (Destination, error) {
	dest := n.Navigate(path)
	if dest.Path == PathLogin && cleanPath(path) != PathLogin {
		return dest, apperr.AuthorityErr("Please sign in to continue.")
	}
	return dest, nil
}

// RedirectToLogin forces the login view. The gateway calls it after an
// authority failure.
func (n *Navigator) RedirectToLogin() {
	route, _, _ := n.table.match(PathLogin)

	n.mu.Lock()
	prev := n.current.Path
	n.current = Destination{Path: PathLogin, Route: route, Requested: prev}
	n.mu.Unlock()

	n.log.WithField("from", prev).Info("session ended, returning to login")
}

// Current returns the view last navigated to.
func (n *Navigator) Current() Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Navigator) resolve(requested string) Destination {
	path := cleanPath(requested)

	if gateway.IsExportPath(path) {
		return Destination{Path: path, Export: true}
	}

	route, params, ok := n.table.match(path)
	if !ok {
		route, params, _ = n.table.match(PathFallback)
		path = PathFallback
	}

	if n.guard.Evaluate(path, route) == Blocked {
		login, _, _ := n.table.match(PathLogin)
		return Destination{Path: PathLogin, Route: login, Requested: requested}
	}

	dest := Destination{Path: path, Route: route, Params: params}
	if path != cleanPath(requested) {
		dest.Requested = requested
	}
	return dest
}

// cleanPath drops the query and fragment and any trailing slash.
func cleanPath(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = "/"
	}
	return path
}
