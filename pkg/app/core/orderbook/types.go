package orderbook

// Side is the direction of an order. The sign matches the change in the
// account's holding when the order fills.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) Opposite() Side { return -s }

func (s Side) Valid() bool { return s == Buy || s == Sell }

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Unknown"
	}
}

// OrderType is fixed at creation. Market and Limit orders match on
// arrival; StopLoss and TakeProfit rest until a price tick triggers them.
type OrderType int8

const (
	Market OrderType = iota
	Limit
	StopLoss
	TakeProfit
)

func (t OrderType) Valid() bool { return t >= Market && t <= TakeProfit }

// Conditional reports whether the order waits for a trigger price.
func (t OrderType) Conditional() bool { return t == StopLoss || t == TakeProfit }

func (t OrderType) String() string {
	switch t {
	case Market:
		return "Market"
	case Limit:
		return "Limit"
	case StopLoss:
		return "StopLoss"
	case TakeProfit:
		return "TakeProfit"
	default:
		return "Unknown"
	}
}

// OrderID is assigned by the book: 1, 2, 3, ... never reused.
type OrderID int64

// Rejected is returned by AddOrder when an order is not admitted.
const Rejected OrderID = -1

// Fill is one execution against the ledger.
// MakerID is zero when a conditional order executed on a trigger.
type Fill struct {
	TakerID OrderID
	MakerID OrderID
	Symbol  string
	Side    Side // taker side
	Price   float64
	Qty     int64
}

// Request is an order as submitted by a caller.
type Request struct {
	Type     OrderType
	Side     Side
	Price    float64
	Quantity int64
	Symbol   string
}

// Placement describes the outcome of an admitted order.
type Placement struct {
	ID      OrderID
	Fills   []Fill
	Resting bool // remainder (or the whole conditional order) is on the book
}

// Filled returns the quantity executed on arrival.
func (p Placement) Filled() int64 {
	var n int64
	for _, f := range p.Fills {
		n += f.Qty
	}
	return n
}
