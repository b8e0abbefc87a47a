package console

import (
	"context"
	"sort"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/modules/preferences"
)

// RegisterBuiltins adds the commands that need no API call.
func RegisterBuiltins(env *Env, prefs *preferences.Service) {
	env.Router.Handle("nav", "<path>  resolve a view through the session guard", func(_ context.Context, args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		dest := env.Nav.Navigate(args[0])
		fields := [][2]string{{"Path", dest.Path}}
		if dest.Export {
			fields = append(fields, [2]string{"View", "export link"})
		} else {
			fields = append(fields, [2]string{"View", dest.Route.Title})
		}
		if dest.Redirected() {
			fields = append(fields, [2]string{"Requested", dest.Requested})
		}
		keys := make([]string, 0, len(dest.Params))
		for k := range dest.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, [2]string{"Param " + k, dest.Params[k]})
		}
		env.Printer.Fields(fields)
		return nil
	})

	env.Router.Handle("theme", "[light|dark|toggle]", func(_ context.Context, args []string) error {
		switch {
		case len(args) == 0:
			env.Printer.Println(prefs.Theme())
			return nil
		case len(args) > 1:
			return ErrUsage
		}

		var next preferences.Theme
		if strings.EqualFold(args[0], "toggle") {
			t, err := prefs.Toggle()
			if err != nil {
				return err
			}
			next = t
		} else {
			t, err := preferences.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := prefs.SetTheme(t); err != nil {
				return err
			}
			next = t
		}
		env.Printer.SetTheme(next)
		env.Printer.Println("theme:", next)
		return nil
	})
}
