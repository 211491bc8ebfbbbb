package params

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Account struct {
	SeedCash   float64
	SeedAssets map[string]int64 // symbol -> starting holding
}

type Market struct {
	Symbols    []string
	StartPrice float64
	// VolatilityBps bounds each random-walk step as a fraction of the
	// current price, in basis points (100 = ±1% per tick).
	VolatilityBps int64
}

type Sim struct {
	// TickInterval is the pause between price ticks. 100ms matches the
	// refresh rate a live price chart needs.
	TickInterval time.Duration
	OrderProbPct int   // chance per tick that a random order is submitted
	MaxTicks     int64 // 0 = run until interrupted
	Seed         int64 // 0 = seed from the clock
}

type Log struct {
	File    string
	Verbose bool
}

type Config struct {
	Account Account
	Market  Market
	Sim     Sim
	Log     Log
}

func Default() Config {
	return Config{
		Account: Account{
			SeedCash:   100000,
			SeedAssets: map[string]int64{"BTC": 10},
		},
		Market: Market{
			Symbols:       []string{"BTC"},
			StartPrice:    100,
			VolatilityBps: 100,
		},
		Sim: Sim{
			TickInterval: 100 * time.Millisecond,
			OrderProbPct: 20,
		},
		Log: Log{
			File: "data/simulator.log",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("ACCOUNT_SEED_CASH"); v != "" {
		cash, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("ACCOUNT_SEED_CASH: %w", err)
		}
		cfg.Account.SeedCash = cash
	}
	if v := os.Getenv("ACCOUNT_SEED_ASSETS"); v != "" {
		assets, err := ParseAssets(v)
		if err != nil {
			return cfg, fmt.Errorf("ACCOUNT_SEED_ASSETS: %w", err)
		}
		cfg.Account.SeedAssets = assets
	}

	if v := os.Getenv("MARKET_SYMBOLS"); v != "" {
		cfg.Market.Symbols = splitList(v)
	}
	if v := os.Getenv("MARKET_START_PRICE"); v != "" {
		px, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("MARKET_START_PRICE: %w", err)
		}
		cfg.Market.StartPrice = px
	}
	if v := os.Getenv("MARKET_VOLATILITY_BPS"); v != "" {
		bps, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("MARKET_VOLATILITY_BPS: %w", err)
		}
		cfg.Market.VolatilityBps = bps
	}

	if v := os.Getenv("SIM_TICK_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SIM_TICK_MS: %w", err)
		}
		cfg.Sim.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("SIM_ORDER_PROB_PCT"); v != "" {
		pct, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("SIM_ORDER_PROB_PCT: %w", err)
		}
		cfg.Sim.OrderProbPct = pct
	}
	if v := os.Getenv("SIM_MAX_TICKS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("SIM_MAX_TICKS: %w", err)
		}
		cfg.Sim.MaxTicks = n
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("SIM_SEED: %w", err)
		}
		cfg.Sim.Seed = seed
	}

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	if v := os.Getenv("VERBOSE"); v != "" {
		cfg.Log.Verbose = v == "true"
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !(c.Account.SeedCash > 0) || math.IsInf(c.Account.SeedCash, 0) {
		return fmt.Errorf("seed cash must be positive: %v", c.Account.SeedCash)
	}
	for sym, qty := range c.Account.SeedAssets {
		if sym == "" || qty < 0 {
			return fmt.Errorf("invalid seed asset %q=%d", sym, qty)
		}
	}
	if len(c.Market.Symbols) == 0 {
		return fmt.Errorf("at least one market symbol is required")
	}
	if c.Market.StartPrice <= 0 {
		return fmt.Errorf("start price must be positive")
	}
	if c.Market.VolatilityBps < 0 || c.Market.VolatilityBps >= 10000 {
		return fmt.Errorf("volatility must be in [0, 10000) bps, got %d", c.Market.VolatilityBps)
	}
	if c.Sim.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Sim.OrderProbPct < 0 || c.Sim.OrderProbPct > 100 {
		return fmt.Errorf("order probability must be in [0, 100], got %d", c.Sim.OrderProbPct)
	}
	if c.Sim.MaxTicks < 0 {
		return fmt.Errorf("max ticks cannot be negative")
	}
	return nil
}

// ParseAssets parses "BTC=10,ETH=25" into a holdings map.
func ParseAssets(s string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, part := range splitList(s) {
		sym, qty, ok := strings.Cut(part, "=")
		sym = strings.TrimSpace(sym)
		if !ok || sym == "" {
			return nil, fmt.Errorf("expected SYMBOL=QTY, got %q", part)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(qty), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("quantity for %s: %w", sym, err)
		}
		out[sym] = n
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
