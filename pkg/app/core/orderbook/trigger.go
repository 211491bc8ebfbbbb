package orderbook

import (
	"math"

	"go.uber.org/zap"

	"github.com/uhyunpark/tradesim/pkg/app/core/notify"
)

// SimulateMarket evaluates every active StopLoss/TakeProfit order for
// symbol against currentPrice and executes those that fire. An empty
// symbol evaluates orders of every symbol.
//
// A fired order goes inactive and its whole remaining quantity executes
// against the ledger at currentPrice, not at its trigger price. Non-finite
// prices are ignored.
func (ob *OrderBook) SimulateMarket(currentPrice float64, symbol string) []Fill {
	if math.IsNaN(currentPrice) || math.IsInf(currentPrice, 0) {
		ob.log.Warn("tick_ignored", zap.String("symbol", symbol), zap.Float64("px", currentPrice))
		return nil
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	var fills []Fill
	for _, o := range ob.orders {
		if !o.Active || !o.Type.Conditional() {
			continue
		}
		if symbol != "" && o.Symbol != symbol {
			continue
		}
		if !o.triggeredBy(currentPrice) {
			continue
		}

		ob.notes.Append(notify.Triggered, "%s Triggered: %s at %.2f", o.Type, o, currentPrice)

		qty := o.Quantity
		o.Quantity = 0
		o.Active = false
		notional := ob.settle(o.Side, o.Symbol, currentPrice, qty)

		ob.log.Info("order_triggered",
			zap.Int64("id", int64(o.ID)),
			zap.Stringer("type", o.Type),
			zap.Stringer("side", o.Side),
			zap.String("symbol", o.Symbol),
			zap.Float64("trigger", o.Price),
			zap.Float64("px", currentPrice),
			zap.Int64("qty", qty),
			zap.Stringer("notional", notional))

		fills = append(fills, Fill{
			TakerID: o.ID,
			Symbol:  o.Symbol,
			Side:    o.Side,
			Price:   currentPrice,
			Qty:     qty,
		})
	}
	return fills
}
