package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

var (
	ErrMarketNotFound = errors.New("market not found")
	ErrMarketExists   = errors.New("market already registered")
)

// Registry tracks the symbols a venue trades, their status and the last
// tick seen for each.
type Registry struct {
	mu      sync.RWMutex
	markets map[string]*Market // symbol -> market
}

func NewRegistry() *Registry {
	return &Registry{
		markets: make(map[string]*Market),
	}
}

// RegisterMarket adds an Active market for symbol.
func (r *Registry) RegisterMarket(symbol string) (*Market, error) {
	m, err := NewMarket(symbol)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markets[symbol]; exists {
		return nil, fmt.Errorf("%w: %s", ErrMarketExists, symbol)
	}
	r.markets[symbol] = m
	return m, nil
}

// GetMarket returns a copy of the market for symbol.
func (r *Registry) GetMarket(symbol string) (Market, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.markets[symbol]
	if !exists {
		return Market{}, fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	return *m, nil
}

// ListMarkets returns copies of all markets sorted by symbol.
func (r *Registry) ListMarkets() []Market {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Market, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ListActiveMarkets returns only markets with Active status, sorted.
func (r *Registry) ListActiveMarkets() []Market {
	all := r.ListMarkets()
	out := all[:0]
	for _, m := range all {
		if m.Status == Active {
			out = append(out, m)
		}
	}
	return out
}

// UpdateMarketStatus changes the trading status of a market.
// Settled is terminal.
func (r *Registry) UpdateMarketStatus(symbol string, status MarketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.markets[symbol]
	if !exists {
		return fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	if m.Status == Settled {
		return fmt.Errorf("cannot change status of %s from Settled (terminal state)", symbol)
	}
	m.Status = status
	return nil
}

// RecordPrice stores a tick for symbol and reports whether the market is
// Active, i.e. whether the tick should reach the engine.
func (r *Registry) RecordPrice(symbol string, price float64) (bool, error) {
	if !(price > 0) || math.IsInf(price, 0) {
		return false, fmt.Errorf("price must be positive, got %v", price)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.markets[symbol]
	if !exists {
		return false, fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	if m.Status == Settled {
		return false, nil
	}
	m.LastPrice = price
	m.Ticks++
	return m.Status == Active, nil
}

// Count returns the total number of registered markets
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// Exists checks if a market is registered
func (r *Registry) Exists(symbol string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.markets[symbol]
	return exists
}
