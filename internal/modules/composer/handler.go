package composer

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/catalog"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
	"github.com/georgemunganga/stockdesk/internal/modules/order"
)

// Catalog supplies the product snapshot a draft validates against.
type Catalog interface {
	Snapshot(ctx context.Context) ([]catalog.Product, error)
}

// Orders is what the composer commands need from the order service.
type Orders interface {
	Submitter
	Get(ctx context.Context, id int64) (*order.Order, error)
}

// Handler exposes the order create and edit commands.
type Handler struct {
	catalog Catalog
	orders  Orders
	env     *console.Env
	log     *logrus.Entry
}

func NewHandler(cat Catalog, orders Orders, env *console.Env) *Handler {
	return &Handler{catalog: cat, orders: orders, env: env, log: env.Component("composer")}
}

func (h *Handler) RegisterCommands(r *console.Router) {
	r.Handle("orders create", "[-customer n] [-email e] [-item id:qty ...] [-interactive]", h.createOrder)
	r.Handle("orders edit", "<id> [-customer n] [-email e] [-status s] [-item id:qty ...] [-interactive]", h.editOrder)
}

// draftFlags are the flags shared by create and edit.
type draftFlags struct {
	customer    *string
	email       *string
	status      *string
	interactive *bool
	items       []itemFlag
	replace     bool
}

type itemFlag struct {
	productID int64
	quantity  int
}

func bindDraftFlags(fs *flag.FlagSet, withStatus bool) *draftFlags {
	df := &draftFlags{
		customer:    fs.String("customer", "", "customer name"),
		email:       fs.String("email", "", "customer email"),
		interactive: fs.Bool("interactive", false, "edit the draft line by line before submitting"),
	}
	if withStatus {
		df.status = fs.String("status", "", "order status")
	}
	fs.Func("item", "order line as productId:quantity (repeatable)", func(v string) error {
		id, qty, ok := strings.Cut(v, ":")
		if !ok {
			qty = "1"
		}
		pid, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return fmt.Errorf("product id %q: %w", id, err)
		}
		q, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return fmt.Errorf("quantity %q: %w", qty, err)
		}
		df.items = append(df.items, itemFlag{productID: pid, quantity: q})
		df.replace = true
		return nil
	})
	return df
}

func (h *Handler) createOrder(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("orders create")
	df := bindDraftFlags(fs, false)
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathOrderNew); err != nil {
		return err
	}

	products, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	c := New(products, h.orders, h.log)
	c.SetCustomer(*df.customer, *df.email)
	if err := applyItems(c, df.items); err != nil {
		return err
	}
	return h.finish(ctx, c, *df.interactive, "Order Created Successfully!")
}

func (h *Handler) editOrder(ctx context.Context, args []string) error {
	id, rest, err := console.SplitID(args, "orders edit <id> [flags]")
	if err != nil {
		return err
	}
	fs := h.env.Router.Flags("orders edit")
	df := bindDraftFlags(fs, true)
	if err := console.Parse(fs, rest); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(fmt.Sprintf("/orders/edit/%d", id)); err != nil {
		return err
	}

	current, err := h.orders.Get(ctx, id)
	if err != nil {
		return err
	}
	products, err := h.catalog.Snapshot(ctx)
	if err != nil {
		return err
	}
	c := NewForEdit(current, products, h.orders, h.log)

	name, email := c.Customer()
	if *df.customer != "" {
		name = *df.customer
	}
	if *df.email != "" {
		email = *df.email
	}
	c.SetCustomer(name, email)
	if *df.status != "" {
		if err := c.SetStatus(*df.status); err != nil {
			return err
		}
	}
	if df.replace {
		c.ClearLines()
		if err := applyItems(c, df.items); err != nil {
			return err
		}
	}
	return h.finish(ctx, c, *df.interactive, "Order updated.")
}

// applyItems fills the draft from -item flags, reusing the first blank line.
func applyItems(c *Composer, items []itemFlag) error {
	for n, it := range items {
		i := n
		if n >= len(c.Lines()) {
			i = c.AddLine()
		}
		if err := c.SelectProduct(i, it.productID); err != nil {
			return err
		}
		if c.Lines()[i].ProductID == nil {
			return apperr.ValidationErr(fmt.Sprintf("Product %d is not in the catalog.", it.productID), map[string]string{"item": "unknown"})
		}
		if err := c.SetQuantity(i, it.quantity); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) finish(ctx context.Context, c *Composer, interactive bool, done string) error {
	if interactive {
		submit, err := Compose(ctx, h.env.In, h.env.Printer, c)
		if err != nil || !submit {
			return err
		}
	}
	o, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: done})
	h.env.Printer.Printf("Order #%d, %s, total %s\n", o.ID, o.Status, console.Money(o.Total))
	h.env.Nav.Navigate(navigation.PathOrders)
	return nil
}

// ── Interactive draft ───────────────────────────────────────

const composeHelp = `Commands:
  customer <name>          set the customer name
  email <address>          set the customer email
  status <status>          change the status (existing orders only)
  add                      append a blank line
  product <line> <id>      choose the product for a line
  qty <line> <n>           set a line's quantity
  remove <line>            remove a line
  products                 list the catalog snapshot
  show                     print the draft
  submit | cancel`

// Compose edits c from line input. It reports whether the operator asked
// to submit.
func Compose(ctx context.Context, in io.Reader, p *console.Printer, c *Composer) (bool, error) {
	printDraft(p, c)
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		p.Printf("order> ")
		if !scanner.Scan() {
			p.Println()
			return false, scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		done, submit, err := composeStep(p, c, fields)
		if err != nil {
			p.Error(err, "Invalid input.")
			continue
		}
		if done {
			return submit, nil
		}
	}
}

func composeStep(p *console.Printer, c *Composer, f []string) (done, submit bool, err error) {
	cmd, args := f[0], f[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "submit":
		return true, true, nil
	case "cancel", "quit":
		return true, false, nil
	case "help", "?":
		p.Println(composeHelp)
	case "customer":
		_, email := c.Customer()
		c.SetCustomer(rest, email)
	case "email":
		name, _ := c.Customer()
		c.SetCustomer(name, rest)
	case "status":
		return false, false, c.SetStatus(rest)
	case "add":
		c.AddLine()
		printDraft(p, c)
	case "product":
		line, n, err := lineArgs(args, "product <line> <id>")
		if err != nil {
			return false, false, err
		}
		if err := c.SelectProduct(line, int64(n)); err != nil {
			return false, false, err
		}
		printDraft(p, c)
	case "qty":
		line, n, err := lineArgs(args, "qty <line> <n>")
		if err != nil {
			return false, false, err
		}
		if err := c.SetQuantity(line, n); err != nil {
			return false, false, err
		}
		printDraft(p, c)
	case "remove":
		if len(args) != 1 {
			return false, false, apperr.ValidationErr("remove <line>", nil)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, false, apperr.ValidationErr("remove <line>", nil)
		}
		if err := c.RemoveLine(n - 1); err != nil {
			return false, false, err
		}
		printDraft(p, c)
	case "products":
		printSnapshot(p, c.Products())
	case "show":
		printDraft(p, c)
	default:
		return false, false, apperr.ValidationErr("unknown command "+strconv.Quote(cmd)+"; type help", nil)
	}
	return false, false, nil
}

// lineArgs reads "<line> <n>" with a 1-based line number.
func lineArgs(args []string, usage string) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, apperr.ValidationErr(usage, nil)
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, apperr.ValidationErr(usage, nil)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, apperr.ValidationErr(usage, nil)
	}
	return line - 1, n, nil
}

func printDraft(p *console.Printer, c *Composer) {
	name, email := c.Customer()
	header := [][2]string{{"Customer", name}, {"Email", email}}
	if c.Editing() {
		header = append([][2]string{{"Order", "#" + strconv.FormatInt(c.OrderID(), 10)}}, header...)
		header = append(header, [2]string{"Status", string(c.Status())})
	}
	p.Fields(header)

	lines := c.Lines()
	rows := make([][]string, 0, len(lines))
	for i, l := range lines {
		product := "-"
		if l.ProductID != nil {
			product = fmt.Sprintf("%d %s", *l.ProductID, l.ProductName)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), product, console.Money(l.UnitPrice),
			strconv.Itoa(l.Quantity), strconv.Itoa(l.StockCeiling),
			console.Money(float64(l.Quantity) * l.UnitPrice),
		})
	}
	p.Table([]string{"LINE", "PRODUCT", "PRICE", "QTY", "AVAILABLE", "SUBTOTAL"}, rows)
	p.Printf("Total: %s\n", console.Money(c.Total()))
}

func printSnapshot(p *console.Printer, products []catalog.Product) {
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	rows := make([][]string, 0, len(products))
	for _, pr := range products {
		rows = append(rows, []string{
			strconv.FormatInt(pr.ID, 10), pr.Name, console.Money(pr.Price), strconv.Itoa(pr.Stock),
		})
	}
	p.Table([]string{"ID", "NAME", "PRICE", "STOCK"}, rows)
}
