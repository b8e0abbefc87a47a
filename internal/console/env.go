package console

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
)

// Env is what every command handler shares.
type Env struct {
	Router   *Router
	Printer  *Printer
	Nav      *navigation.Navigator
	In       io.Reader
	Log      *logrus.Entry
	PageSize int
	Debounce time.Duration
}

// Component returns the logger for one module.
func (e *Env) Component(name string) *logrus.Entry {
	return e.Log.WithField("component", name)
}
