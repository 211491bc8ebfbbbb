package sim

import (
	"math/rand"

	"github.com/uhyunpark/tradesim/pkg/app/core/orderbook"
)

// OrderFlow generates random order requests around the current price,
// standing in for a user typing orders into the venue.
type OrderFlow struct {
	rng *rand.Rand
}

func NewOrderFlow(rng *rand.Rand) *OrderFlow {
	return &OrderFlow{rng: rng}
}

// Next builds a request for symbol given the last price and the account's
// current holding. Sells are sized within the holding and turn into buys
// when there is nothing to sell, so most generated orders are admitted.
func (f *OrderFlow) Next(symbol string, last float64, holding int64) orderbook.Request {
	// 30% Market, 40% Limit, 15% StopLoss, 15% TakeProfit
	var typ orderbook.OrderType
	r := f.rng.Intn(100)
	switch {
	case r < 30:
		typ = orderbook.Market
	case r < 70:
		typ = orderbook.Limit
	case r < 85:
		typ = orderbook.StopLoss
	default:
		typ = orderbook.TakeProfit
	}

	side := orderbook.Buy
	if holding > 0 && f.rng.Intn(2) == 1 {
		side = orderbook.Sell
	}

	var qty int64
	if side == orderbook.Sell {
		qty = f.rng.Int63n(min(holding, 5)) + 1
	} else {
		qty = f.rng.Int63n(5) + 1
	}

	return orderbook.Request{
		Type:     typ,
		Side:     side,
		Price:    f.price(typ, side, last),
		Quantity: qty,
		Symbol:   symbol,
	}
}

// price picks a limit or trigger price on the side of last that makes
// sense for the order: stops sit on the losing side, take-profits on the
// winning side, limits within ±2%.
func (f *OrderFlow) price(typ orderbook.OrderType, side orderbook.Side, last float64) float64 {
	// offset in (0, 5%]
	offset := float64(f.rng.Intn(500)+1) / 10000

	var px float64
	switch typ {
	case orderbook.Market:
		return 0
	case orderbook.Limit:
		px = last * (1 + (f.rng.Float64()*4-2)/100)
	case orderbook.StopLoss:
		if side == orderbook.Sell {
			px = last * (1 - offset)
		} else {
			px = last * (1 + offset)
		}
	case orderbook.TakeProfit:
		if side == orderbook.Sell {
			px = last * (1 + offset)
		} else {
			px = last * (1 - offset)
		}
	}

	px = roundCents(px)
	if px < 0.01 {
		px = 0.01
	}
	return px
}
