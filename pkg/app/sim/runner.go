package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/tradesim/pkg/util"
)

// Run ticks app every interval on the calling goroutine until ctx is done
// or maxTicks ticks have run (0 = no limit). All engine calls happen on
// this one goroutine.
func Run(ctx context.Context, app *App, interval time.Duration, maxTicks int64, clock util.Clock) Stats {
	if clock == nil {
		clock = util.RealClock{}
	}

	start := clock.Now()
	const logEvery = 100

	app.log.Info("sim_started",
		zap.Duration("interval", interval),
		zap.Int64("max_ticks", maxTicks),
		zap.Int("markets", app.markets.Count()))

	for {
		if ctx.Err() != nil {
			break
		}
		if maxTicks > 0 && app.stats.Ticks >= maxTicks {
			break
		}

		select {
		case <-ctx.Done():
		case <-clock.After(interval):
			app.Tick()
			if app.stats.Ticks%logEvery == 0 {
				app.log.Info("sim_progress",
					zap.Int64("ticks", app.stats.Ticks),
					zap.Int64("orders", app.stats.Orders),
					zap.Int64("rejected", app.stats.Rejected),
					zap.Int64("fills", app.stats.Fills),
					zap.Int64("triggers", app.stats.Triggers))
			}
		}
	}

	elapsed := clock.Now().Sub(start)
	app.log.Info("sim_stopped",
		zap.Int64("ticks", app.stats.Ticks),
		zap.Duration("elapsed", elapsed.Round(time.Millisecond)))
	return app.stats
}
