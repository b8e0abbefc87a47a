package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/georgemunganga/stockdesk/internal/config"
	"github.com/georgemunganga/stockdesk/internal/console"
	"github.com/georgemunganga/stockdesk/internal/localstate"
	"github.com/georgemunganga/stockdesk/internal/modules/analytics"
	"github.com/georgemunganga/stockdesk/internal/modules/auth"
	"github.com/georgemunganga/stockdesk/internal/modules/catalog"
	"github.com/georgemunganga/stockdesk/internal/modules/composer"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/navigation"
	"github.com/georgemunganga/stockdesk/internal/modules/order"
	"github.com/georgemunganga/stockdesk/internal/modules/preferences"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()
	logger := cfg.NewLogger()
	log := logger.WithField("app", "stockdesk")

	state, err := localstate.OpenFile(cfg.State.Path)
	if err != nil {
		log.WithError(err).Error("cannot open local state")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Session & navigation ────────────────────────────────
	sessions := session.NewStore(state, log.WithField("component", "session"))
	nav := navigation.NewNavigator(sessions, log.WithField("component", "navigation"))
	prefs := preferences.NewService(state)

	gw := gateway.New(gateway.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		RateBurst: cfg.API.RateBurst,
	}, sessions, nav, log.WithField("component", "gateway"))

	// ── Console ─────────────────────────────────────────────
	printer := console.NewPrinter(os.Stdout, prefs.Theme())
	router := console.NewRouter(os.Stdout)
	env := &console.Env{
		Router:   router,
		Printer:  printer,
		Nav:      nav,
		In:       os.Stdin,
		Log:      log,
		PageSize: cfg.Browser.PageSize,
		Debounce: cfg.Browser.SearchDebounce,
	}
	console.RegisterBuiltins(env, prefs)

	// ── Modules ─────────────────────────────────────────────
	authService := auth.NewService(gw, sessions, env.Component("auth"))
	auth.NewHandler(authService, env).RegisterCommands(router)

	catalogService := catalog.NewService(catalog.NewRemoteRepository(gw), catalog.Options{
		SnapshotSize:      cfg.Browser.CatalogSnapshot,
		LowStockThreshold: cfg.Browser.LowStockThreshold,
	}, env.Component("catalog"))
	catalog.NewHandler(catalogService, env).RegisterCommands(router)

	orderService := order.NewService(order.NewRemoteRepository(gw), env.Component("order"))
	order.NewHandler(orderService, env).RegisterCommands(router)
	composer.NewHandler(catalogService, orderService, env).RegisterCommands(router)

	analyticsService := analytics.NewService(analytics.NewRemoteRepository(gw), env.Component("analytics"))
	analytics.NewHandler(analyticsService, env).RegisterCommands(router)

	if err := router.Dispatch(ctx, args); err != nil {
		if errors.Is(err, console.ErrUsage) {
			return 2
		}
		log.WithError(err).Debug("command failed")
		printer.Error(err, "Something went wrong.")
		return 1
	}
	return 0
}
