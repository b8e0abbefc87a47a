package order

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
)

// Handler exposes order commands. Create and edit live with the composer.
type Handler struct {
	service Service
	env     *console.Env
	log     *logrus.Entry
}

func NewHandler(service Service, env *console.Env) *Handler {
	return &Handler{service: service, env: env, log: env.Component("order")}
}

func (h *Handler) RegisterCommands(r *console.Router) {
	r.Handle("orders list", "[-page n] [-size n] [-customer name] [-min-total n] [-max-total n] [-after date] [-before date] [-sort s]", h.listOrders)
	r.Handle("orders get", "<id>", h.getOrder)
	r.Handle("orders status", "<id> <PENDING|PROCESSING|SHIPPED|DELIVERED|CANCELLED>", h.updateStatus)
	r.Handle("orders delete", "<id>", h.deleteOrder)
	r.Handle("orders export", "csv|excel|pdf", h.exportOrders)
	r.Handle("orders browse", "interactive order list", h.browseOrders)
}

// Listing is how orders are tabulated.
var Listing = console.Listing[Order]{
	Title:     "Orders",
	Columns:   []string{"ID", "CUSTOMER", "EMAIL", "STATUS", "TOTAL", "CREATED"},
	SearchKey: browser.KeyCustomerName,
	Row: func(o Order) []string {
		created := "-"
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		return []string{
			strconv.FormatInt(o.ID, 10), o.CustomerName, o.CustomerEmail,
			string(o.Status), console.Money(o.Total), created,
		}
	},
}

func (h *Handler) listOrders(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("orders list")
	page := fs.Int("page", 1, "page number, from 1")
	size := fs.Int("size", h.env.PageSize, "rows per page")
	sortText := fs.String("sort", "", "sort such as total,desc or -createdAt")
	filters := map[string]*string{
		browser.KeyCustomerName:  fs.String("customer", "", "customer name contains"),
		browser.KeyMinTotal:      fs.String("min-total", "", "minimum total"),
		browser.KeyMaxTotal:      fs.String("max-total", "", "maximum total"),
		browser.KeyCreatedAfter:  fs.String("after", "", "created on or after (ISO date)"),
		browser.KeyCreatedBefore: fs.String("before", "", "created on or before (ISO date)"),
	}
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathOrders); err != nil {
		return err
	}

	q := browser.Query{Page: max(*page-1, 0), Size: *size, Filter: browser.FilterSpec{}, SortText: *sortText}
	if q.Size <= 0 {
		return apperr.ValidationErr("Page size must be positive.", nil)
	}
	for key, v := range filters {
		if err := q.Filter.Set(key, *v); err != nil {
			return err
		}
	}

	result, err := h.service.Fetch(ctx, q)
	if err != nil {
		return err
	}
	console.Render(h.env.Printer, Listing, browser.View[Order]{
		Rows:          result.Items,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		Page:          q.Page,
		Size:          q.Size,
		Filter:        q.Filter,
		SortText:      q.SortText,
	})
	return nil
}

func (h *Handler) getOrder(ctx context.Context, args []string) error {
	id, _, err := console.SplitID(args, "orders get <id>")
	if err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(fmt.Sprintf("/orders/view/%d", id)); err != nil {
		return err
	}
	o, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	h.printOrder(o)
	return nil
}

func (h *Handler) updateStatus(ctx context.Context, args []string) error {
	id, rest, err := console.SplitID(args, "orders status <id> <status>")
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return apperr.ValidationErr("usage: orders status <id> <status>", nil)
	}
	if _, err := h.env.Nav.Enter(fmt.Sprintf("/orders/view/%d", id)); err != nil {
		return err
	}
	o, err := h.service.UpdateStatus(ctx, id, rest[0])
	if err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{
		Severity: browser.SeveritySuccess,
		Message:  fmt.Sprintf("Order #%d is now %s.", o.ID, o.Status),
	})
	return nil
}

func (h *Handler) deleteOrder(ctx context.Context, args []string) error {
	id, _, err := console.SplitID(args, "orders delete <id>")
	if err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathOrders); err != nil {
		return err
	}
	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: "Order deleted."})
	return nil
}

func (h *Handler) exportOrders(_ context.Context, args []string) error {
	if len(args) != 1 {
		return apperr.ValidationErr("usage: orders export csv|excel|pdf", nil)
	}
	link, err := h.service.ExportURL(args[0])
	if err != nil {
		return err
	}
	h.env.Nav.Navigate(basePath + "/export/" + args[0])
	h.env.Printer.Println(link)
	return nil
}

func (h *Handler) browseOrders(ctx context.Context, _ []string) error {
	if _, err := h.env.Nav.Enter(navigation.PathOrders); err != nil {
		return err
	}
	b := console.NewBrowser[Order](ctx, h.service, browser.Options{
		PageSize: h.env.PageSize,
		Debounce: h.env.Debounce,
	}, h.env.Printer, Listing, h.log)
	return console.Browse(ctx, h.env.In, h.env.Printer, b, Listing)
}

func (h *Handler) printOrder(o *Order) {
	created := "-"
	if !o.CreatedAt.IsZero() {
		created = o.CreatedAt.Local().Format("2006-01-02 15:04")
	}
	h.env.Printer.Fields([][2]string{
		{"Order", "#" + strconv.FormatInt(o.ID, 10)},
		{"Customer", o.CustomerName},
		{"Email", o.CustomerEmail},
		{"Status", string(o.Status)},
		{"Created", created},
	})
	rows := make([][]string, 0, len(o.Items))
	for _, it := range o.Items {
		rows = append(rows, []string{
			strconv.FormatInt(it.ProductID, 10), it.ProductName, console.Money(it.UnitPrice),
			strconv.Itoa(it.Quantity), console.Money(it.UnitPrice * float64(it.Quantity)),
		})
	}
	h.env.Printer.Table([]string{"PRODUCT", "NAME", "PRICE", "QTY", "SUBTOTAL"}, rows)
	h.env.Printer.Printf("Total: %s\n", console.Money(o.Total))
}
