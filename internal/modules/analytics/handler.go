package analytics

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/georgemunganga/stockdesk/internal/apperr"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/modules/browser"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
)

// barWidth is the widest trend bar in characters.
const barWidth = 40

type Handler struct {
	service Service
	env     *console.Env
}

func NewHandler(service Service, env *console.Env) *Handler {
	return &Handler{service: service, env: env}
}

func (h *Handler) RegisterCommands(r *console.Router) {
	r.Handle("analytics", "summary, breakdowns and the sales trend", h.dashboard)
	r.Handle("analytics export", "csv|excel|pdf", h.export)
}

func (h *Handler) dashboard(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return console.ErrUsage
	}
	if _, err := h.env.Nav.Enter(navigation.PathAnalytics); err != nil {
		return err
	}
	d, err := h.service.Dashboard(ctx)
	if err != nil {
		return err
	}
	p := h.env.Printer
	s := d.Summary

	p.Fields([][2]string{
		{"Products", strconv.FormatInt(s.TotalProducts, 10)},
		{"Orders", strconv.FormatInt(s.TotalOrders, 10)},
		{"Revenue", console.Money(s.TotalRevenue)},
		{"Low stock", strconv.FormatInt(s.LowStockCount, 10)},
	})

	if len(s.CategoryCounts) > 0 {
		names := make([]string, 0, len(s.CategoryCounts))
		for name := range s.CategoryCounts {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, name := range names {
			rows = append(rows, []string{name, strconv.FormatInt(s.CategoryCounts[name], 10)})
		}
		p.Println()
		p.Table([]string{"CATEGORY", "PRODUCTS"}, rows)
	}

	if len(s.PriceSegments) > 0 {
		rows := make([][]string, 0, len(s.PriceSegments))
		for _, seg := range s.PriceSegments {
			rows = append(rows, []string{seg.Range, strconv.FormatInt(seg.Count, 10)})
		}
		p.Println()
		p.Table([]string{"PRICE RANGE", "PRODUCTS"}, rows)
	}

	if len(s.TopProducts) > 0 {
		rows := make([][]string, 0, len(s.TopProducts))
		for _, tp := range s.TopProducts {
			rows = append(rows, []string{tp.ProductName, strconv.FormatInt(tp.QuantitySold, 10)})
		}
		p.Println()
		p.Table([]string{"TOP PRODUCT", "SOLD"}, rows)
	}

	p.Println()
	if d.DailyErr != nil {
		p.Notify(browser.Notification{Severity: browser.SeverityWarning, Message: "Daily sales unavailable; showing monthly revenue."})
	}
	switch d.TrendSource {
	case TrendNone:
		p.Println("No sales recorded yet.")
	default:
		p.Printf("Sales trend (%s)\n", d.TrendSource)
		p.Table([]string{"PERIOD", "REVENUE", ""}, trendRows(d.Trend))
	}
	return nil
}

// trendRows scales each point to a text bar relative to the largest value.
func trendRows(points []Point) [][]string {
	var peak float64
	for _, pt := range points {
		peak = max(peak, pt.Value)
	}
	rows := make([][]string, 0, len(points))
	for _, pt := range points {
		n := 0
		if peak > 0 && pt.Value > 0 {
			n = max(int(pt.Value/peak*barWidth), 1)
		}
		rows = append(rows, []string{pt.Label, console.Money(pt.Value), strings.Repeat("#", n)})
	}
	return rows
}

func (h *Handler) export(_ context.Context, args []string) error {
	if len(args) != 1 {
		return apperr.ValidationErr("usage: analytics export csv|excel|pdf", nil)
	}
	link, err := h.service.ExportURL(args[0])
	if err != nil {
		return err
	}
	h.env.Nav.Navigate(basePath + "/export/" + args[0])
	h.env.Printer.Println(link)
	return nil
}
