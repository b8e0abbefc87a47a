package catalog

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
)

// Handler exposes catalog commands.
type Handler struct {
	service Service
	env     *console.Env
	log     *logrus.Entry
}

func NewHandler(service Service, env *console.Env) *Handler {
	return &Handler{service: service, env: env, log: env.Component("catalog")}
}

func (h *Handler) RegisterCommands(r *console.Router) {
	r.Handle("products list", "[-page n] [-size n] [-q text] [-category c] [-min-price n] [-max-price n] [-min-stock n] [-max-stock n] [-sort s]", h.listProducts)
	r.Handle("products get", "<id>", h.getProduct)
	r.Handle("products create", "-name n [-sku s] [-category c] [-brand b] [-stock n] [-price n] [-reorder-level n]", h.createProduct)
	r.Handle("products update", "<id> [-name n] [-sku s] [-category c] [-brand b] [-stock n] [-price n] [-reorder-level n]", h.updateProduct)
	r.Handle("products delete", "<id>", h.deleteProduct)
	r.Handle("products bulk-delete", "<id> [id...]", h.bulkDelete)
	r.Handle("products export", "csv|excel|pdf", h.exportProducts)
	r.Handle("products browse", "interactive product list", h.browseProducts)
	r.Handle("low-stock", "[-threshold n]", h.lowStock)
}

// Listing is how products are tabulated.
var Listing = console.Listing[Product]{
	Title:     "Products",
	Columns:   []string{"ID", "SKU", "NAME", "CATEGORY", "BRAND", "STOCK", "PRICE", "REORDER", "SEVERITY"},
	SearchKey: browser.KeyQuery,
	Row: func(p Product) []string {
		reorder := "-"
		if p.ReorderLevel != nil {
			reorder = strconv.Itoa(*p.ReorderLevel)
		}
		return []string{
			strconv.FormatInt(p.ID, 10), p.SKU, p.Name, p.Category, p.Brand,
			strconv.Itoa(p.Stock), console.Money(p.Price), reorder, p.Severity.String(),
		}
	},
}

func (h *Handler) listProducts(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("products list")
	page := fs.Int("page", 1, "page number, from 1")
	size := fs.Int("size", h.env.PageSize, "rows per page")
	sortText := fs.String("sort", "", "sort such as price,desc or -price")
	filters := map[string]*string{
		browser.KeyQuery:    fs.String("q", "", "free-text search"),
		browser.KeyCategory: fs.String("category", "", "category"),
		browser.KeyMinPrice: fs.String("min-price", "", "minimum price"),
		browser.KeyMaxPrice: fs.String("max-price", "", "maximum price"),
		browser.KeyMinStock: fs.String("min-stock", "", "minimum stock"),
		browser.KeyMaxStock: fs.String("max-stock", "", "maximum stock"),
	}
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathProducts); err != nil {
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
	console.Render(h.env.Printer, Listing, browser.View[Product]{
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

func (h *Handler) getProduct(ctx context.Context, args []string) error {
	id, _, err := console.SplitID(args, "products get <id>")
	if err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathProducts); err != nil {
		return err
	}
	p, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	h.printProduct(p)
	return nil
}

func (h *Handler) createProduct(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("products create")
	req := ProductRequest{ReorderLevel: DefaultReorderLevel}
	bindRequestFlags(fs, &req)
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathProductNew); err != nil {
		return err
	}

	p, err := h.service.Create(ctx, req)
	if err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: "Product created."})
	h.printProduct(p)
	return nil
}

func (h *Handler) updateProduct(ctx context.Context, args []string) error {
	id, rest, err := console.SplitID(args, "products update <id> [flags]")
	if err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(fmt.Sprintf("/products/%d/edit", id)); err != nil {
		return err
	}

	current, err := h.service.Get(ctx, id)
	if err != nil {
		return err
	}
	// Flags default to the stored values so only the ones given change.
	req := RequestFrom(current)
	fs := h.env.Router.Flags("products update")
	bindRequestFlags(fs, &req)
	if err := console.Parse(fs, rest); err != nil {
		return err
	}

	p, err := h.service.Update(ctx, id, req)
	if err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: "Product updated."})
	h.printProduct(p)
	return nil
}

func (h *Handler) deleteProduct(ctx context.Context, args []string) error {
	id, _, err := console.SplitID(args, "products delete <id>")
	if err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathProducts); err != nil {
		return err
	}
	if err := h.service.Delete(ctx, id); err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: "Product deleted."})
	return nil
}

func (h *Handler) bulkDelete(ctx context.Context, args []string) error {
	ids, err := console.ParseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return apperr.ValidationErr("Select at least one product to delete.", nil)
	}
	if _, err := h.env.Nav.Enter(navigation.PathProducts); err != nil {
		return err
	}
	if err := h.service.DeleteMany(ctx, ids); err != nil {
		return err
	}
	h.env.Printer.Notify(browser.Notification{Severity: browser.SeveritySuccess, Message: fmt.Sprintf("%d products deleted.", len(ids))})
	return nil
}

func (h *Handler) exportProducts(_ context.Context, args []string) error {
	if len(args) != 1 {
		return apperr.ValidationErr("usage: products export csv|excel|pdf", nil)
	}
	link, err := h.service.ExportURL(args[0])
	if err != nil {
		return err
	}
	h.env.Nav.Navigate(basePath + "/export/" + args[0])
	h.env.Printer.Println(link)
	return nil
}

func (h *Handler) browseProducts(ctx context.Context, _ []string) error {
	if _, err := h.env.Nav.Enter(navigation.PathProducts); err != nil {
		return err
	}
	b := console.NewBrowser[Product](ctx, h.service, browser.Options{
		PageSize: h.env.PageSize,
		Debounce: h.env.Debounce,
	}, h.env.Printer, Listing, h.log)
	return console.Browse(ctx, h.env.In, h.env.Printer, b, Listing)
}

func (h *Handler) lowStock(ctx context.Context, args []string) error {
	fs := h.env.Router.Flags("low-stock")
	threshold := fs.Int("threshold", 0, "stock threshold (default from config)")
	if err := console.Parse(fs, args); err != nil {
		return err
	}
	if _, err := h.env.Nav.Enter(navigation.PathLowStock); err != nil {
		return err
	}

	report, err := h.service.LowStock(ctx, *threshold)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(report.Items))
	for _, p := range report.Items {
		suggestion := "-"
		if p.ReorderSuggestion != nil {
			suggestion = strconv.Itoa(*p.ReorderSuggestion)
		}
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10), p.SKU, p.Name, strconv.Itoa(p.Stock), p.Severity.String(), suggestion,
		})
	}
	h.env.Printer.Table([]string{"ID", "SKU", "NAME", "STOCK", "SEVERITY", "REORDER BY"}, rows)
	h.env.Printer.Printf("%d products at or below %d\n", report.Count, report.Threshold)
	return nil
}

func (h *Handler) printProduct(p *Product) {
	reorder := "-"
	if p.ReorderLevel != nil {
		reorder = strconv.Itoa(*p.ReorderLevel)
	}
	h.env.Printer.Fields([][2]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"SKU", p.SKU},
		{"Name", p.Name},
		{"Category", p.Category},
		{"Brand", p.Brand},
		{"Stock", strconv.Itoa(p.Stock)},
		{"Price", console.Money(p.Price)},
		{"Reorder level", reorder},
		{"Severity", p.Severity.String()},
	})
}

func bindRequestFlags(fs *flag.FlagSet, req *ProductRequest) {
	fs.StringVar(&req.Name, "name", req.Name, "product name")
	fs.StringVar(&req.SKU, "sku", req.SKU, "stock keeping unit")
	fs.StringVar(&req.Category, "category", req.Category, "category")
	fs.StringVar(&req.Brand, "brand", req.Brand, "brand")
	fs.IntVar(&req.Stock, "stock", req.Stock, "units in stock")
	fs.Float64Var(&req.Price, "price", req.Price, "unit price")
	fs.IntVar(&req.ReorderLevel, "reorder-level", req.ReorderLevel, "reorder level")
}
