package orderbook

import "fmt"

// Order is a record in the book. ID, Type, Side and Symbol never change;
// Quantity counts down as fills occur and Active goes false exactly once.
type Order struct {
	ID       OrderID
	Type     OrderType
	Side     Side
	Symbol   string
	Price    float64
	Quantity int64
	Active   bool
}

func (o Order) String() string {
	active := "No"
	if o.Active {
		active = "Yes"
	}
	return fmt.Sprintf("ID: %d, %s, %s, %s, Price: %.2f, Qty: %d, Active: %s",
		o.ID, o.Side, o.Type, o.Symbol, o.Price, o.Quantity, active)
}

// crosses reports whether an incoming Market/Limit order may trade
// against a resting order priced at makerPrice.
func (o *Order) crosses(makerPrice float64) bool {
	switch o.Type {
	case Market:
		return true
	case Limit:
		if o.Side == Buy {
			return makerPrice <= o.Price
		}
		return makerPrice >= o.Price
	default:
		return false
	}
}

// triggeredBy reports whether a conditional order fires at price.
//
//	StopLoss   Sell: price <= trigger    Buy: price >= trigger
//	TakeProfit Sell: price >= trigger    Buy: price <= trigger
func (o *Order) triggeredBy(price float64) bool {
	switch o.Type {
	case StopLoss:
		if o.Side == Sell {
			return price <= o.Price
		}
		return price >= o.Price
	case TakeProfit:
		if o.Side == Sell {
			return price >= o.Price
		}
		return price <= o.Price
	default:
		return false
	}
}
