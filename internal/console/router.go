// Package console is the terminal presentation layer: command dispatch,
// table output and the interactive list browser.
package console

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
)

// ErrUsage is returned when a command was called with bad arguments. The usage
// line has already been printed.
var ErrUsage = errors.New("usage")

// CommandFunc runs one command with the arguments that follow its name.
type CommandFunc func(ctx context.Context, args []string) error

type command struct {
	name  string
	usage string
	run   CommandFunc
}

// Router maps command names of one or two words ("whoami", "products list")
// to their functions.
type Router struct {
	commands map[string]command
	out      io.Writer
}

func NewRouter(out io.Writer) *Router {
	return &Router{commands: make(map[string]command), out: out}
}

// Handle registers fn under name. usage is the argument synopsis.
func (r *Router) Handle(name, usage string, fn CommandFunc) {
	r.commands[name] = command{name: name, usage: usage, run: fn}
}

// Dispatch finds the longest registered name that prefixes args and runs it.
func (r *Router) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.Usage()
		return ErrUsage
	}
	for n := min(2, len(args)); n > 0; n-- {
		name := strings.Join(args[:n], " ")
		if cmd, ok := r.commands[name]; ok {
			err := cmd.run(ctx, args[n:])
			if errors.Is(err, ErrUsage) {
				fmt.Fprintf(r.out, "usage: stockdesk %s %s\n", cmd.name, cmd.usage)
			}
			return err
		}
	}
	fmt.Fprintf(r.out, "Unknown command: %s\n\n", strings.Join(args, " "))
	r.Usage()
	return ErrUsage
}

// Usage prints every command with its synopsis.
func (r *Router) Usage() {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(r.out, "Usage:\n  stockdesk <command> [options]\n\nCommands:")
	for _, name := range names {
		fmt.Fprintf(r.out, "  %-22s %s\n", name, r.commands[name].usage)
	}
}

// Flags returns a flag set for a command that reports errors instead of
// exiting.
func (r *Router) Flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	return fs
}

// SplitID takes a leading record id off args so the rest can go to a flag
// set.
func SplitID(args []string, usage string) (int64, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return 0, nil, apperr.ValidationErr("usage: "+usage, nil)
	}
	ids, err := ParseIDs(args[:1])
	if err != nil || len(ids) != 1 {
		return 0, nil, apperr.ValidationErr("usage: "+usage, nil)
	}
	return ids[0], args[1:], nil
}

// Parse parses args into fs. The flag package has already printed the
// problem when this fails.
func Parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	return nil
}
