package market

import (
	"errors"
	"math"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	if _, err := r.RegisterMarket("ETH"); err != nil {
		t.Fatalf("register ETH: %v", err)
	}
	if _, err := r.RegisterMarket("BTC"); err != nil {
		t.Fatalf("register BTC: %v", err)
	}
	if _, err := r.RegisterMarket("BTC"); !errors.Is(err, ErrMarketExists) {
		t.Errorf("duplicate register err = %v, want ErrMarketExists", err)
	}
	if _, err := r.RegisterMarket(""); err == nil {
		t.Errorf("empty symbol should be rejected")
	}

	if r.Count() != 2 || !r.Exists("BTC") || r.Exists("SOL") {
		t.Errorf("count/exists mismatch")
	}

	list := r.ListMarkets()
	if len(list) != 2 || list[0].Symbol != "BTC" || list[1].Symbol != "ETH" {
		t.Errorf("list = %+v, want BTC, ETH", list)
	}

	if _, err := r.GetMarket("SOL"); !errors.Is(err, ErrMarketNotFound) {
		t.Errorf("get unknown err = %v", err)
	}
}

func TestRecordPrice(t *testing.T) {
	r := NewRegistry()
	r.RegisterMarket("BTC")

	tests := []struct {
		name       string
		status     MarketStatus
		price      float64
		wantActive bool
		wantErr    bool
		wantLast   float64
	}{
		{"active tick", Active, 101.5, true, false, 101.5},
		{"paused tick still recorded", Paused, 99, false, false, 99},
		{"non-positive price", Active, 0, false, true, 99},
		{"NaN price", Active, math.NaN(), false, true, 99},
		{"infinite price", Active, math.Inf(1), false, true, 99},
		{"resumed", Active, 100, true, false, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.UpdateMarketStatus("BTC", tt.status); err != nil {
				t.Fatalf("status: %v", err)
			}
			active, err := r.RecordPrice("BTC", tt.price)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if active != tt.wantActive {
				t.Errorf("active = %v, want %v", active, tt.wantActive)
			}
			m, _ := r.GetMarket("BTC")
			if m.LastPrice != tt.wantLast {
				t.Errorf("last = %v, want %v", m.LastPrice, tt.wantLast)
			}
		})
	}

	m, _ := r.GetMarket("BTC")
	if m.Ticks != 3 {
		t.Errorf("ticks = %d, want 3", m.Ticks)
	}

	if _, err := r.RecordPrice("SOL", 1); !errors.Is(err, ErrMarketNotFound) {
		t.Errorf("unknown symbol err = %v", err)
	}
}

func TestSettledIsTerminal(t *testing.T) {
	r := NewRegistry()
	r.RegisterMarket("BTC")

	if err := r.UpdateMarketStatus("BTC", Settled); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := r.UpdateMarketStatus("BTC", Active); err == nil {
		t.Errorf("expected error leaving Settled")
	}
	active, err := r.RecordPrice("BTC", 10)
	if err != nil || active {
		t.Errorf("settled tick: active=%v err=%v", active, err)
	}
	if len(r.ListActiveMarkets()) != 0 {
		t.Errorf("settled market listed as active")
	}
}

func TestGetMarketReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.RegisterMarket("BTC")

	m, _ := r.GetMarket("BTC")
	m.Status = Settled

	again, _ := r.GetMarket("BTC")
	if again.Status != Active {
		t.Errorf("registry mutated through returned copy")
	}
}
