package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
)

// Listing describes how a collection is shown.
type Listing[T any] struct {
	Title   string
	Columns []string
	Row     func(T) []string
	// SearchKey is the free-text filter the "search" command edits.
	SearchKey string
}

// Render prints the current page of b.
func Render[T any](p *Printer, l Listing[T], v browser.View[T]) {
	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, l.Row(r))
	}
	p.Table(l.Columns, rows)

	meta := fmt.Sprintf("%s: page %d of %d, %d total", l.Title, v.Page+1, v.TotalPages, v.TotalElements)
	if len(v.Filter) > 0 {
		parts := make([]string, 0, len(v.Filter))
		for _, k := range v.Filter.Keys() {
			parts = append(parts, k+"="+v.Filter[k])
		}
		meta += ", filter " + strings.Join(parts, " ")
	}
	switch {
	case v.SortText != "":
		meta += ", sort " + v.SortText
	case v.Sort != nil:
		meta += fmt.Sprintf(", sort %s %s", v.Sort.Field, v.Sort.Direction)
	}
	if len(v.Selection) > 0 {
		meta += fmt.Sprintf(", %d selected", len(v.Selection))
	}
	p.Println(meta)
}

const browseHelp = `Commands:
  search <text>          free-text search (applied after a short pause)
  filter <key> <value>   set a filter and reload now (empty value clears it)
  set <key> <value>      stage a filter; "apply" reloads with staged filters
  apply                  reload from the first page with staged filters
  clear                  drop all filters and reload
  sort <field> [asc|desc]
  sortby <text>          free-text sort such as price,desc or -price
  page <n> | next | prev
  size <n>               rows per page
  reload | show
  select <id...> | deselect <id...>
  delete <id>            delete one record
  bulk-delete            delete every selected record
  help | quit`

// NewBrowser creates a browser whose notifications and committed loads,
// debounced ones included, go to p.
func NewBrowser[T any](ctx context.Context, src browser.Source[T], opts browser.Options, p *Printer, l Listing[T], log *logrus.Entry) *browser.Browser[T] {
	var b *browser.Browser[T]
	opts.Notifier = p
	opts.OnCommit = func() { Render(p, l, b.State()) }
	b = browser.New[T](ctx, src, opts, log)
	return b
}

// Browse runs an interactive session over b until quit or end of input.
func Browse[T any](ctx context.Context, in io.Reader, p *Printer, b *browser.Browser[T], l Listing[T]) error {
	defer b.Close()
	_ = b.Reload(ctx)

	scanner := bufio.NewScanner(in)
	for {
		p.Printf("%s> ", strings.ToLower(l.Title))
		if !scanner.Scan() {
			p.Println()
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		quit, err := browseStep(ctx, p, b, l, fields)
		if apperr.Is(err, apperr.Validation) {
			p.Error(err, "Invalid input.")
		}
		// Everything else was already reported through the notifier.
		if apperr.Is(err, apperr.Authority) || quit {
			return err
		}
	}
}

func browseStep[T any](ctx context.Context, p *Printer, b *browser.Browser[T], l Listing[T], f []string) (bool, error) {
	cmd, args := f[0], f[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		p.Println(browseHelp)
	case "search":
		return false, b.UpdateFilter(l.SearchKey, rest)
	case "filter":
		if len(args) < 1 {
			return false, usageErr("filter <key> <value>")
		}
		if err := b.UpdateFilter(args[0], strings.Join(args[1:], " ")); err != nil {
			return false, err
		}
		return false, b.Reload(ctx)
	case "set":
		if len(args) < 1 {
			return false, usageErr("set <key> <value>")
		}
		if err := b.UpdateFilter(args[0], strings.Join(args[1:], " ")); err != nil {
			return false, err
		}
		p.Printf("staged %s; type apply to reload\n", args[0])
	case "apply":
		return false, b.Apply(ctx)
	case "clear":
		b.ClearFilters()
		return false, b.Apply(ctx)
	case "sort":
		if len(args) < 1 {
			return false, usageErr("sort <field> [asc|desc]")
		}
		dir := ""
		if len(args) > 1 {
			dir = args[1]
		}
		d, err := browser.ParseDirection(dir)
		if err != nil {
			return false, err
		}
		return false, b.SetSort(ctx, args[0], d)
	case "sortby":
		return false, b.SetSortText(ctx, rest)
	case "page":
		n, err := positive(args, "page <n>")
		if err != nil {
			return false, err
		}
		return false, b.SetPage(ctx, n-1)
	case "next":
		return false, b.NextPage(ctx)
	case "prev":
		return false, b.PrevPage(ctx)
	case "size":
		n, err := positive(args, "size <n>")
		if err != nil {
			return false, err
		}
		return false, b.SetPageSize(ctx, n)
	case "reload":
		return false, b.Reload(ctx)
	case "show":
		Render(p, l, b.State())
	case "select", "deselect":
		ids, err := ParseIDs(args)
		if err != nil {
			return false, err
		}
		if cmd == "select" {
			b.Select(ids...)
		} else {
			b.Deselect(ids...)
		}
		p.Printf("selected: %v\n", b.Selection())
	case "delete":
		ids, err := ParseIDs(args)
		if err != nil || len(ids) != 1 {
			return false, usageErr("delete <id>")
		}
		return false, b.DeleteOne(ctx, ids[0])
	case "bulk-delete":
		return false, b.DeleteSelected(ctx)
	default:
		return false, usageErr("unknown command " + strconv.Quote(cmd) + "; type help")
	}
	return false, nil
}

func usageErr(msg string) error {
	return apperr.ValidationErr(msg, nil)
}

func positive(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, usageErr(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, usageErr(usage)
	}
	return n, nil
}

// ParseIDs reads record ids; commas and spaces both separate.
func ParseIDs(args []string) ([]int64, error) {
	var ids []int64
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, apperr.ValidationErr(fmt.Sprintf("%q is not a record id.", part), nil)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
