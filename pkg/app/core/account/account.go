package account

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Account is the venue's single trading account: a cash balance plus
// integer holdings per symbol.
//
// Cash is kept as a decimal so that a fill of qty at price moves the
// balance by exactly price×qty, however many fills accumulate. Prices
// arrive as float64 and are converted once per fill.
//
// The order book is the only writer. Account itself is not synchronized;
// callers outside the book should work from a Snapshot.
type Account struct {
	cash   decimal.Decimal
	assets map[string]int64 // symbol → held quantity
}

// Snapshot is a detached, read-only copy of an Account.
type Snapshot struct {
	Cash   float64
	Assets map[string]int64
}

// NewAccount seeds an account. The assets map is copied.
func NewAccount(cash decimal.Decimal, assets map[string]int64) *Account {
	a := &Account{
		cash:   cash,
		assets: make(map[string]int64, len(assets)),
	}
	for sym, qty := range assets {
		a.assets[sym] = qty
	}
	return a
}

// NewAccountFromFloat is NewAccount for callers holding a float seed.
func NewAccountFromFloat(cash float64, assets map[string]int64) *Account {
	return NewAccount(decimal.NewFromFloat(cash), assets)
}

// Cash returns the balance as a float64 for display.
func (a *Account) Cash() float64 {
	return a.cash.InexactFloat64()
}

// CashDecimal returns the exact balance.
func (a *Account) CashDecimal() decimal.Decimal {
	return a.cash
}

// Holding returns the held quantity of symbol (0 if never held).
func (a *Account) Holding(symbol string) int64 {
	return a.assets[symbol]
}

// Symbols returns every symbol with a ledger entry, sorted.
func (a *Account) Symbols() []string {
	out := make([]string, 0, len(a.assets))
	for sym := range a.assets {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Notional returns price×qty as an exact decimal.
func Notional(price float64, qty int64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty))
}

// Buy debits price×qty from cash and credits qty of symbol.
// Returns the notional moved.
func (a *Account) Buy(symbol string, price float64, qty int64) decimal.Decimal {
	n := Notional(price, qty)
	a.cash = a.cash.Sub(n)
	a.assets[symbol] += qty
	return n
}

// Sell credits price×qty to cash and debits qty of symbol.
// Returns the notional moved.
func (a *Account) Sell(symbol string, price float64, qty int64) decimal.Decimal {
	n := Notional(price, qty)
	a.cash = a.cash.Add(n)
	a.assets[symbol] -= qty
	return n
}

// Snapshot returns a deep copy safe to hand to display code.
func (a *Account) Snapshot() Snapshot {
	s := Snapshot{
		Cash:   a.Cash(),
		Assets: make(map[string]int64, len(a.assets)),
	}
	for sym, qty := range a.assets {
		s.Assets[sym] = qty
	}
	return s
}

// Validate checks ledger invariants. Admission never lets a Sell exceed
// holdings, but a triggered Sell executes in full, so a holding can go
// negative if it was sold down after the conditional order was accepted.
func (a *Account) Validate() error {
	for sym, qty := range a.assets {
		if sym == "" {
			return fmt.Errorf("empty symbol in ledger")
		}
		if qty < 0 {
			return fmt.Errorf("negative holding for %s: %d", sym, qty)
		}
	}
	return nil
}
