package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/preferences"
)

// severity labels per theme; light terminals get plain text.
var palettes = map[preferences.Theme]map[browser.Severity]string{
	preferences.Light: {
		browser.SeveritySuccess: "[ok]",
		browser.SeverityInfo:    "[info]",
		browser.SeverityWarning: "[warn]",
		browser.SeverityError:   "[error]",
	},
	preferences.Dark: {
		browser.SeveritySuccess: "\x1b[92m[ok]\x1b[0m",
		browser.SeverityInfo:    "\x1b[96m[info]\x1b[0m",
		browser.SeverityWarning: "\x1b[93m[warn]\x1b[0m",
		browser.SeverityError:   "\x1b[91m[error]\x1b[0m",
	},
}

// Printer writes everything the operator sees. It is safe for concurrent use
// so debounced reloads can render while a prompt is open.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	theme preferences.Theme
}

func NewPrinter(out io.Writer, theme preferences.Theme) *Printer {
	if _, ok := palettes[theme]; !ok {
		theme = preferences.Light
	}
	return &Printer{out: out, theme: theme}
}

// SetTheme switches the palette for everything printed afterwards.
func (p *Printer) SetTheme(theme preferences.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := palettes[theme]; ok {
		p.theme = theme
	}
}

func (p *Printer) Printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Println(args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, args...)
}

// Table renders rows under headers with aligned columns.
func (p *Printer) Table(headers []string, rows [][]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// Fields renders label/value pairs as a two column block.
func (p *Printer) Fields(pairs [][2]string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	for _, kv := range pairs {
		fmt.Fprintf(tw, "%s:\t%s\n", kv[0], kv[1])
	}
	tw.Flush()
}

// Notify implements browser.Notifier.
func (p *Printer) Notify(n browser.Notification) {
	p.mu.Lock()
	label := palettes[p.theme][n.Severity]
	p.mu.Unlock()
	if label == "" {
		label = "[" + string(n.Severity) + "]"
	}
	p.Printf("%s %s\n", label, n.Message)
}

// Error reports err with its public message and any field messages.
func (p *Printer) Error(err error, fallback string) {
	p.Notify(browser.Notification{Severity: browser.SeverityError, Message: apperr.PublicMessage(err, fallback)})
	ae, ok := apperr.As(err)
	if !ok || len(ae.Fields) < 2 {
		return
	}
	keys := make([]string, 0, len(ae.Fields))
	for k := range ae.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Printf("  %s: %s\n", k, ae.Fields[k])
	}
}

// Money formats an amount with two decimals.
func Money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
