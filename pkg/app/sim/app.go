// Package sim drives the matching engine the way an interactive front end
// would: a random-walk price feed ticks every market, and a random order
// flow submits orders in between.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/tradesim/params"
	"github.com/uhyunpark/tradesim/pkg/app/core/market"
	"github.com/uhyunpark/tradesim/pkg/app/core/notify"
	"github.com/uhyunpark/tradesim/pkg/app/core/orderbook"
	"github.com/uhyunpark/tradesim/pkg/util"
)

// Stats counts what the app has done so far.
type Stats struct {
	Ticks    int64
	Orders   int64 // admitted orders
	Rejected int64
	Fills    int64 // executions on arrival
	Triggers int64 // conditional orders fired
}

type App struct {
	book    *orderbook.OrderBook
	markets *market.Registry
	feed    *RandomWalk
	flow    *OrderFlow
	rng     *rand.Rand
	log     *zap.Logger

	orderProbPct int
	lastSeq      uint64
	stats        Stats

	// OnNotification, when set, receives every new notification after
	// each tick in log order.
	OnNotification func(e notify.Entry)
}

func NewApp(cfg params.Config, clock util.Clock, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger = util.OrNop(logger)

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	markets := market.NewRegistry()
	for _, sym := range cfg.Market.Symbols {
		if _, err := markets.RegisterMarket(sym); err != nil {
			return nil, err
		}
	}

	book := orderbook.NewOrderBook(orderbook.Config{
		SeedCash:   cfg.Account.SeedCash,
		SeedAssets: cfg.Account.SeedAssets,
		Logger:     logger.Named("book"),
		Clock:      clock,
	})

	return &App{
		book:         book,
		markets:      markets,
		feed:         NewRandomWalk(rng, cfg.Market.Symbols, cfg.Market.StartPrice, cfg.Market.VolatilityBps),
		flow:         NewOrderFlow(rng),
		rng:          rng,
		log:          logger,
		orderProbPct: cfg.Sim.OrderProbPct,
	}, nil
}

func (a *App) Book() *orderbook.OrderBook { return a.book }

func (a *App) Markets() *market.Registry { return a.markets }

func (a *App) Stats() Stats { return a.stats }

// Tick advances every registered market one price step, lets the engine
// evaluate conditional orders for each active one, and then maybe submits
// one random order. It returns the notifications produced by the tick.
func (a *App) Tick() []notify.Entry {
	a.stats.Ticks++

	var active []market.Market
	for _, m := range a.markets.ListMarkets() {
		px := a.feed.Next(m.Symbol)
		forward, err := a.markets.RecordPrice(m.Symbol, px)
		if err != nil {
			a.log.Warn("tick_record_failed", zap.String("symbol", m.Symbol), zap.Error(err))
			continue
		}
		if !forward {
			continue
		}
		fills := a.book.SimulateMarket(px, m.Symbol)
		a.stats.Triggers += int64(len(fills))
		m.LastPrice = px
		active = append(active, m)
	}

	if len(active) > 0 && a.rng.Intn(100) < a.orderProbPct {
		m := active[a.rng.Intn(len(active))]
		a.submitRandom(m.Symbol, m.LastPrice)
	}

	if err := a.book.ValidateLedger(); err != nil {
		a.log.Warn("ledger_invariant", zap.Error(err))
	}

	entries := a.book.NotificationsSince(a.lastSeq)
	if n := len(entries); n > 0 {
		a.lastSeq = entries[n-1].Seq
	}
	for _, e := range entries {
		a.log.Debug("notification", zap.Stringer("kind", e.Kind), zap.String("msg", e.Message))
		if a.OnNotification != nil {
			a.OnNotification(e)
		}
	}
	return entries
}

func (a *App) submitRandom(symbol string, last float64) {
	req := a.flow.Next(symbol, last, a.book.Holding(symbol))
	p, err := a.book.Submit(req)
	if err != nil {
		a.stats.Rejected++
		return
	}
	a.stats.Orders++
	a.stats.Fills += int64(len(p.Fills))
}
