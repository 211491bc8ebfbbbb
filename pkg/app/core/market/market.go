package market

import "fmt"

// MarketStatus defines the trading status of a market
type MarketStatus int8

const (
	Active  MarketStatus = iota // ticks reach the engine
	Paused                      // ticks are recorded but not forwarded
	Settled                     // closed for good
)

func (ms MarketStatus) String() string {
	switch ms {
	case Active:
		return "Active"
	case Paused:
		return "Paused"
	case Settled:
		return "Settled"
	default:
		return "Unknown"
	}
}

// Market is one tradable symbol and the last price the feed produced for it.
type Market struct {
	Symbol    string
	Status    MarketStatus
	LastPrice float64 // 0 until the first tick
	Ticks     int64   // number of prices recorded
}

func NewMarket(symbol string) (*Market, error) {
	m := &Market{Symbol: symbol, Status: Active}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid market: %w", err)
	}
	return m, nil
}

func (m *Market) Validate() error {
	if m.Symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if m.LastPrice < 0 {
		return fmt.Errorf("last price cannot be negative: %v", m.LastPrice)
	}
	return nil
}
