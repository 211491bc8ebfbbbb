package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/uhyunpark/tradesim/params"
	"github.com/uhyunpark/tradesim/pkg/app/core/notify"
	"github.com/uhyunpark/tradesim/pkg/app/sim"
	"github.com/uhyunpark/tradesim/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := util.NewLoggerWithFile(cfg.Log.File, util.LevelFor(cfg.Log.Verbose))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Log.File, "verbose", cfg.Log.Verbose)

	clock := util.RealClock{}
	app, err := sim.NewApp(cfg, clock, logger)
	if err != nil {
		sugar.Fatalw("app_init_failed", "err", err)
	}

	// Surface the notification log the way the venue's ticker panel would
	app.OnNotification = func(e notify.Entry) {
		sugar.Infow("notification", "seq", e.Seq, "kind", e.Kind.String(), "msg", e.Message)
	}

	sugar.Infow("simulator_starting",
		"symbols", cfg.Market.Symbols,
		"seed_cash", cfg.Account.SeedCash,
		"seed_assets", cfg.Account.SeedAssets,
		"tick_ms", cfg.Sim.TickInterval.Milliseconds(),
		"order_prob_pct", cfg.Sim.OrderProbPct)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := sim.Run(ctx, app, cfg.Sim.TickInterval, cfg.Sim.MaxTicks, clock)

	book := app.Book()
	acc := book.Account()
	sugar.Infow("final_account", "cash", book.Cash().StringFixed(2))
	for _, sym := range book.Symbols() {
		sugar.Infow("final_holding", "symbol", sym, "qty", acc.Assets[sym])
	}
	for _, m := range app.Markets().ListMarkets() {
		sugar.Infow("final_market", "symbol", m.Symbol, "status", m.Status.String(), "last_price", m.LastPrice, "ticks", m.Ticks)
	}
	for _, o := range book.ActiveOrders("") {
		sugar.Infow("open_order", "order", o.String())
	}
	sugar.Infow("simulator_stopped",
		"ticks", stats.Ticks,
		"orders", stats.Orders,
		"rejected", stats.Rejected,
		"fills", stats.Fills,
		"triggers", stats.Triggers,
		"notifications", len(book.Notifications()))
}
