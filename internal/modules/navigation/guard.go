package navigation

import "github.com/georgemunganga/stockdesk/internal/modules/gateway"

// Decision is the guard outcome for one navigation.
type Decision int

const (
	Open Decision = iota
	Blocked
)

func (d Decision) String() string {
	if d == Blocked {
		return "blocked"
	}
	return "open"
}

// SessionChecker reports whether a valid session exists. Implementations may
// drop a stale token while answering.
type SessionChecker interface {
	IsValid() bool
}

// Guard gates protected views on session validity.
type Guard struct {
	sessions SessionChecker
}

func NewGuard(sessions SessionChecker) *Guard {
	return &Guard{sessions: sessions}
}

// Evaluate decides a navigation to path. Export links always pass; public
// routes pass; everything else needs a valid session. The result depends only
// on the path and the current session.
func (g *Guard) Evaluate(path string, route Route) Decision {
	if gateway.IsExportPath(path) || route.Public {
		return Open
	}
	if g.sessions.IsValid() {
		return Open
	}
	return Blocked
}
