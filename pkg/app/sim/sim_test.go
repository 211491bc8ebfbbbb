package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/tradesim/params"
	"github.com/uhyunpark/tradesim/pkg/app/core/market"
	"github.com/uhyunpark/tradesim/pkg/app/core/notify"
	"github.com/uhyunpark/tradesim/pkg/app/core/orderbook"
	"github.com/uhyunpark/tradesim/pkg/util"
)

func testConfig() params.Config {
	cfg := params.Default()
	cfg.Account.SeedAssets = map[string]int64{"BTC": 20, "ETH": 20}
	cfg.Market.Symbols = []string{"BTC", "ETH"}
	cfg.Sim.Seed = 42
	cfg.Sim.OrderProbPct = 0
	return cfg
}

func newTestApp(t *testing.T, cfg params.Config) (*App, *util.ManualClock) {
	t.Helper()
	clock := util.NewManualClock(time.Unix(1_700_000_000, 0))
	app, err := NewApp(cfg, clock, nil)
	require.NoError(t, err)
	return app, clock
}

func TestRandomWalkBounds(t *testing.T) {
	w := NewRandomWalk(rand.New(rand.NewSource(1)), []string{"BTC"}, 100, 200)

	prev := w.Price("BTC")
	for i := 0; i < 1000; i++ {
		px := w.Next("BTC")
		require.GreaterOrEqual(t, px, 1.0, "price fell through the floor")
		// ±2% plus rounding to the cent
		require.LessOrEqual(t, px, prev*1.02+0.005)
		require.GreaterOrEqual(t, px, prev*0.98-0.005)
		require.Equal(t, px, w.Price("BTC"))
		prev = px
	}

	require.Equal(t, 100.0, w.Price("UNKNOWN"))
}

func TestRandomWalkDeterministic(t *testing.T) {
	a := NewRandomWalk(rand.New(rand.NewSource(9)), []string{"BTC"}, 50, 100)
	b := NewRandomWalk(rand.New(rand.NewSource(9)), []string{"BTC"}, 50, 100)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Next("BTC"), b.Next("BTC"))
	}
}

func TestOrderFlowProducesSensibleRequests(t *testing.T) {
	f := NewOrderFlow(rand.New(rand.NewSource(3)))
	const last = 100.0

	seen := map[orderbook.OrderType]bool{}
	for i := 0; i < 2000; i++ {
		holding := int64(i % 4)
		req := f.Next("BTC", last, holding)
		seen[req.Type] = true

		require.Equal(t, "BTC", req.Symbol)
		require.Positive(t, req.Quantity)
		if req.Side == orderbook.Sell {
			require.LessOrEqual(t, req.Quantity, holding)
		}

		switch req.Type {
		case orderbook.Market:
			require.Zero(t, req.Price)
		case orderbook.Limit:
			require.InDelta(t, last, req.Price, 2.01)
		case orderbook.StopLoss:
			if req.Side == orderbook.Sell {
				require.Less(t, req.Price, last)
			} else {
				require.Greater(t, req.Price, last)
			}
		case orderbook.TakeProfit:
			if req.Side == orderbook.Sell {
				require.Greater(t, req.Price, last)
			} else {
				require.Less(t, req.Price, last)
			}
		}
	}
	require.Len(t, seen, 4)
}

func TestTickForwardsOnlyActiveMarkets(t *testing.T) {
	app, _ := newTestApp(t, testConfig())

	// A buy stop at the minimum price fires on any tick.
	btcStop := app.Book().AddOrder(orderbook.StopLoss, orderbook.Buy, 0.01, 1, "BTC")
	ethStop := app.Book().AddOrder(orderbook.StopLoss, orderbook.Buy, 0.01, 1, "ETH")
	require.NotEqual(t, orderbook.Rejected, btcStop)
	require.NotEqual(t, orderbook.Rejected, ethStop)

	require.NoError(t, app.Markets().UpdateMarketStatus("ETH", market.Paused))

	entries := app.Tick()
	require.Len(t, entries, 1)
	require.Equal(t, notify.Triggered, entries[0].Kind)

	_, btcActive := app.Book().GetOrder(btcStop)
	_, ethActive := app.Book().GetOrder(ethStop)
	require.False(t, btcActive)
	require.True(t, ethActive, "paused market must not trigger")

	eth, err := app.Markets().GetMarket("ETH")
	require.NoError(t, err)
	require.EqualValues(t, 1, eth.Ticks, "paused ticks are still recorded")

	require.NoError(t, app.Markets().UpdateMarketStatus("ETH", market.Active))
	app.Tick()
	_, ethActive = app.Book().GetOrder(ethStop)
	require.False(t, ethActive)
	require.EqualValues(t, 2, app.Stats().Triggers)
}

func TestTickReportsOnlyNewNotifications(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.OrderProbPct = 100
	app, _ := newTestApp(t, cfg)

	var hooked []notify.Entry
	app.OnNotification = func(e notify.Entry) { hooked = append(hooked, e) }

	var total int
	for i := 0; i < 200; i++ {
		total += len(app.Tick())
	}

	require.Equal(t, len(app.Book().Notifications()), total)
	require.Len(t, hooked, total)
	for i, e := range hooked {
		require.EqualValues(t, i+1, e.Seq)
	}

	st := app.Stats()
	require.EqualValues(t, 200, st.Ticks)
	require.EqualValues(t, 200, st.Orders+st.Rejected, "one order per tick")
	require.Positive(t, st.Orders)
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Sim.OrderProbPct = 50
	app, clock := newTestApp(t, cfg)
	start := clock.Now()

	st := Run(context.Background(), app, 100*time.Millisecond, 25, clock)

	require.EqualValues(t, 25, st.Ticks)
	require.Equal(t, 2500*time.Millisecond, clock.Now().Sub(start))
	for _, m := range app.Markets().ListMarkets() {
		require.EqualValues(t, 25, m.Ticks)
		require.Positive(t, m.LastPrice)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	app, clock := newTestApp(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := Run(ctx, app, time.Second, 0, clock)
	require.Zero(t, st.Ticks)
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Market.Symbols = nil
	_, err := NewApp(cfg, nil, nil)
	require.Error(t, err)

	cfg = testConfig()
	cfg.Market.Symbols = []string{"BTC", "BTC"}
	_, err = NewApp(cfg, nil, nil)
	require.ErrorIs(t, err, market.ErrMarketExists)
}
