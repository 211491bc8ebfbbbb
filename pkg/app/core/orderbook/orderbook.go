// Package orderbook is the venue's matching engine. It owns every order
// ever submitted, the account ledger those orders trade against and the
// notification log describing what happened.
//
// Matching is deliberately simple: an incoming Market or Limit order scans
// the book oldest-first and trades with the first eligible resting order,
// then the next, until it is filled or the scan ends. There is no price
// priority. Executions happen at the resting order's price.
package orderbook

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uhyunpark/tradesim/pkg/app/core/account"
	"github.com/uhyunpark/tradesim/pkg/app/core/notify"
	"github.com/uhyunpark/tradesim/pkg/util"
)

var (
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInsufficientAssets = errors.New("insufficient assets")
)

// DefaultSeedCash is the starting cash balance when Config leaves it zero.
const DefaultSeedCash = 100000

type Config struct {
	SeedCash   float64          // starting cash; 0 means DefaultSeedCash
	SeedAssets map[string]int64 // starting holdings per symbol
	Logger     *zap.Logger
	Clock      util.Clock // timestamps for notifications
}

type OrderBook struct {
	mu sync.Mutex

	// Arena of order records in insertion order. Records are never removed,
	// so a position in this slice stays valid for the life of the book.
	orders []*Order
	index  map[OrderID]int // order ID -> position in orders

	nextID OrderID

	ledger *account.Account
	notes  *notify.Log
	log    *zap.Logger
}

func NewOrderBook(cfg Config) *OrderBook {
	cash := cfg.SeedCash
	if cash == 0 {
		cash = DefaultSeedCash
	}
	return &OrderBook{
		index:  make(map[OrderID]int),
		nextID: 1,
		ledger: account.NewAccountFromFloat(cash, cfg.SeedAssets),
		notes:  notify.NewLog(cfg.Clock),
		log:    util.OrNop(cfg.Logger),
	}
}

// AddOrder submits an order and returns its ID, or Rejected if it was not
// admitted. The reason for a rejection is in the notification log.
// A Market or Limit order that fills completely on arrival still gets an
// ID even though it never rests on the book.
func (ob *OrderBook) AddOrder(typ OrderType, side Side, price float64, qty int64, symbol string) OrderID {
	p, err := ob.Submit(Request{Type: typ, Side: side, Price: price, Quantity: qty, Symbol: symbol})
	if err != nil {
		return Rejected
	}
	return p.ID
}

// Submit is AddOrder with the fills and the rejection reason exposed.
// A rejected order consumes no ID and leaves the book and ledger untouched;
// the returned error wraps one of the Err* sentinels.
func (ob *OrderBook) Submit(req Request) (Placement, error) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	if err := ob.admit(req); err != nil {
		return Placement{ID: Rejected}, err
	}

	o := &Order{
		ID:       ob.nextID,
		Type:     req.Type,
		Side:     req.Side,
		Symbol:   req.Symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
		Active:   true,
	}
	ob.nextID++

	if o.Type.Conditional() {
		ob.insert(o)
		ob.log.Debug("order_resting",
			zap.Int64("id", int64(o.ID)),
			zap.Stringer("type", o.Type),
			zap.Stringer("side", o.Side),
			zap.String("symbol", o.Symbol),
			zap.Float64("trigger", o.Price),
			zap.Int64("qty", o.Quantity))
		return Placement{ID: o.ID, Resting: true}, nil
	}

	fills := ob.match(o)
	resting := o.Quantity > 0
	if resting {
		ob.insert(o)
	}

	ob.log.Debug("order_accepted",
		zap.Int64("id", int64(o.ID)),
		zap.Stringer("type", o.Type),
		zap.Stringer("side", o.Side),
		zap.String("symbol", o.Symbol),
		zap.Int("fills", len(fills)),
		zap.Int64("remaining", o.Quantity))

	return Placement{ID: o.ID, Fills: fills, Resting: resting}, nil
}

// admit runs the admission checks. On failure it records the rejection in
// the notification log and returns the wrapped sentinel.
func (ob *OrderBook) admit(req Request) error {
	var (
		err error
		msg string
	)
	switch {
	case !req.Type.Valid() || !req.Side.Valid():
		err = fmt.Errorf("%w: type=%d side=%d", ErrInvalidOrder, req.Type, req.Side)
		msg = "Order Rejected: Unknown order type or side"
	case req.Symbol == "":
		err = fmt.Errorf("%w: empty symbol", ErrInvalidOrder)
		msg = "Order Rejected: Missing symbol"
	case req.Quantity <= 0:
		err = fmt.Errorf("%w: %d", ErrInvalidQuantity, req.Quantity)
		msg = fmt.Sprintf("Order Rejected: Invalid quantity %d", req.Quantity)
	case req.Type != Market && !validPrice(req.Price), !finite(req.Price):
		err = fmt.Errorf("%w: %v", ErrInvalidPrice, req.Price)
		msg = fmt.Sprintf("Order Rejected: Invalid price %.2f", req.Price)
	case req.Side == Sell && req.Quantity > ob.ledger.Holding(req.Symbol):
		err = fmt.Errorf("%w: %s holding %d, sell needs %d",
			ErrInsufficientAssets, req.Symbol, ob.ledger.Holding(req.Symbol), req.Quantity)
		msg = fmt.Sprintf("Order Rejected: Insufficient %s assets to sell", req.Symbol)
	default:
		return nil
	}

	ob.notes.Append(notify.Rejected, "%s", msg)
	ob.log.Info("order_rejected",
		zap.Stringer("type", req.Type),
		zap.Stringer("side", req.Side),
		zap.String("symbol", req.Symbol),
		zap.Int64("qty", req.Quantity),
		zap.Error(err))
	return err
}

func validPrice(p float64) bool {
	return p > 0 && finite(p)
}

// finite guards every stored price: a Market order's price is otherwise
// unchecked but becomes the execution price if the order rests.
func finite(p float64) bool {
	return !math.IsInf(p, 0) && !math.IsNaN(p)
}

func (ob *OrderBook) insert(o *Order) {
	ob.index[o.ID] = len(ob.orders)
	ob.orders = append(ob.orders, o)
}

// match scans the book in insertion order and fills o against every
// eligible resting order until o is exhausted.
func (ob *OrderBook) match(o *Order) []Fill {
	var fills []Fill

	for _, maker := range ob.orders {
		if o.Quantity == 0 {
			break
		}
		if !maker.Active || maker.Side != o.Side.Opposite() || maker.Symbol != o.Symbol {
			continue
		}
		if !o.crosses(maker.Price) {
			continue
		}

		qty := min(o.Quantity, maker.Quantity)
		o.Quantity -= qty
		maker.Quantity -= qty
		if maker.Quantity == 0 {
			maker.Active = false
		}

		notional := ob.settle(o.Side, o.Symbol, maker.Price, qty)
		ob.notes.Append(notify.Trade, "Trade Executed: %s %d %s @ %.2f", o.Side, qty, o.Symbol, maker.Price)
		ob.log.Debug("order_filled",
			zap.Int64("taker", int64(o.ID)),
			zap.Int64("maker", int64(maker.ID)),
			zap.String("symbol", o.Symbol),
			zap.Float64("px", maker.Price),
			zap.Int64("qty", qty),
			zap.Stringer("notional", notional))

		fills = append(fills, Fill{
			TakerID: o.ID,
			MakerID: maker.ID,
			Symbol:  o.Symbol,
			Side:    o.Side,
			Price:   maker.Price,
			Qty:     qty,
		})
	}
	return fills
}

// settle applies one execution to the ledger from the taker's side.
func (ob *OrderBook) settle(side Side, symbol string, price float64, qty int64) decimal.Decimal {
	if side == Buy {
		return ob.ledger.Buy(symbol, price, qty)
	}
	return ob.ledger.Sell(symbol, price, qty)
}

// CancelOrder deactivates an active order. It returns false when the ID is
// unknown or the order is already inactive.
func (ob *OrderBook) CancelOrder(id OrderID) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	o := ob.lookup(id)
	if o == nil || !o.Active {
		return false
	}
	o.Active = false
	ob.notes.Append(notify.Cancelled, "Order Cancelled: ID %d", id)
	ob.log.Debug("order_cancelled", zap.Int64("id", int64(id)))
	return true
}

// GetOrder returns a copy of the order if it is active.
// Inactive and unknown IDs both report false.
func (ob *OrderBook) GetOrder(id OrderID) (Order, bool) {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	o := ob.lookup(id)
	if o == nil || !o.Active {
		return Order{}, false
	}
	return *o, true
}

func (ob *OrderBook) lookup(id OrderID) *Order {
	pos, ok := ob.index[id]
	if !ok {
		return nil
	}
	return ob.orders[pos]
}

// Orders returns a copy of every order on the book, active or not, in
// insertion order.
func (ob *OrderBook) Orders() []Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	out := make([]Order, len(ob.orders))
	for i, o := range ob.orders {
		out[i] = *o
	}
	return out
}

// ActiveOrders returns copies of the active orders for symbol, or for all
// symbols when symbol is empty.
func (ob *OrderBook) ActiveOrders(symbol string) []Order {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	var out []Order
	for _, o := range ob.orders {
		if o.Active && (symbol == "" || o.Symbol == symbol) {
			out = append(out, *o)
		}
	}
	return out
}

// Account returns a snapshot of the ledger.
func (ob *OrderBook) Account() account.Snapshot {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.ledger.Snapshot()
}

// Cash returns the exact cash balance.
func (ob *OrderBook) Cash() decimal.Decimal {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.ledger.CashDecimal()
}

func (ob *OrderBook) Holding(symbol string) int64 {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.ledger.Holding(symbol)
}

// Symbols lists every symbol held in the ledger, sorted.
func (ob *OrderBook) Symbols() []string {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.ledger.Symbols()
}

// ValidateLedger reports ledger invariant violations (see account.Validate).
func (ob *OrderBook) ValidateLedger() error {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return ob.ledger.Validate()
}

// Notifications returns every notification message in order.
func (ob *OrderBook) Notifications() []string {
	return ob.notes.Messages()
}

// NotificationsSince returns the notifications appended after seq.
func (ob *OrderBook) NotificationsSince(seq uint64) []notify.Entry {
	return ob.notes.Since(seq)
}
