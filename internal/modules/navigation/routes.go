package navigation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	PathLogin       = "/login"
	PathProducts    = "/products"
	PathProductNew  = "/products/new"
	PathProductEdit = "/products/{id}/edit"
	PathOrders      = "/orders"
	PathOrderNew    = "/orders/new"
	PathOrderView   = "/orders/view/{id}"
	PathOrderEdit   = "/orders/edit/{id}"
	PathLowStock    = "/low-stock"
	PathAnalytics   = "/analytics"

	// PathFallback is where unmatched paths land.
	PathFallback = PathProducts
)

// Route is one entry of the view table.
type Route struct {
	Pattern string
	Title   string
	Public  bool
}

// Routes is the view table of the client.
var Routes = []Route{
	{Pattern: PathLogin, Title: "Sign in", Public: true},
	{Pattern: PathProducts, Title: "Products"},
	{Pattern: PathProductNew, Title: "New product"},
	{Pattern: PathProductEdit, Title: "Edit product"},
	{Pattern: PathOrders, Title: "Orders"},
	{Pattern: PathOrderNew, Title: "New order"},
	{Pattern: PathOrderView, Title: "Order details"},
	{Pattern: PathOrderEdit, Title: "Edit order"},
	{Pattern: PathLowStock, Title: "Low stock"},
	{Pattern: PathAnalytics, Title: "Analytics"},
}

// table matches view paths with a chi tree. Nothing is ever served; the mux
// is only asked which pattern a path belongs to.
type table struct {
	mux    *chi.Mux
	routes map[string]Route
}

func newTable() *table {
	t := &table{mux: chi.NewRouter(), routes: make(map[string]Route, len(Routes))}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, r := range Routes {
		t.mux.Get(r.Pattern, noop)
		t.routes[r.Pattern] = r
	}
	return t
}

// match returns the route and path parameters for path.
func (t *table) match(path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, nil, false
	}
	route, ok := t.routes[rctx.RoutePattern()]
	if !ok {
		return Route{}, nil, false
	}
	var params map[string]string
	if n := len(rctx.URLParams.Keys); n > 0 {
		params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return route, params, true
}
