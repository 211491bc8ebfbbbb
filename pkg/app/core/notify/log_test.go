package notify

import (
	"testing"
	"time"

	"github.com/uhyunpark/tradesim/pkg/util"
)

func newTestLog() (*Log, *util.ManualClock) {
	clock := util.NewManualClock(time.Unix(1_700_000_000, 0))
	return NewLog(clock), clock
}

func TestAppendOrderAndSequence(t *testing.T) {
	l, clock := newTestLog()

	first := l.Append(Trade, "Trade Executed: Buy %d %s @ %.2f", 3, "BTC", 100.0)
	clock.Advance(time.Second)
	second := l.Append(Cancelled, "Order Cancelled: ID %d", 1)

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seq = %d,%d, want 1,2", first.Seq, second.Seq)
	}
	if first.ID == second.ID {
		t.Fatalf("entry ids must differ")
	}
	if !second.At.After(first.At) {
		t.Errorf("timestamps not taken from clock: %v then %v", first.At, second.At)
	}

	want := []string{"Trade Executed: Buy 3 BTC @ 100.00", "Order Cancelled: ID 1"}
	got := l.Messages()
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNoDedup(t *testing.T) {
	l, _ := newTestLog()
	l.Append(Rejected, "Order Rejected: Insufficient BTC assets to sell")
	l.Append(Rejected, "Order Rejected: Insufficient BTC assets to sell")
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}
}

func TestSinceAndTail(t *testing.T) {
	l, _ := newTestLog()
	for i := 1; i <= 5; i++ {
		l.Append(Trade, "t%d", i)
	}

	tests := []struct {
		name  string
		got   []Entry
		first string
		n     int
	}{
		{"since zero", l.Since(0), "t1", 5},
		{"since three", l.Since(3), "t4", 2},
		{"since end", l.Since(5), "", 0},
		{"since past end", l.Since(9), "", 0},
		{"tail two", l.Tail(2), "t4", 2},
		{"tail more than len", l.Tail(10), "t1", 5},
		{"tail zero", l.Tail(0), "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != tt.n {
				t.Fatalf("len = %d, want %d", len(tt.got), tt.n)
			}
			if tt.n > 0 && tt.got[0].Message != tt.first {
				t.Errorf("first = %q, want %q", tt.got[0].Message, tt.first)
			}
		})
	}
}

func TestEntriesIsACopy(t *testing.T) {
	l, _ := newTestLog()
	l.Append(Trade, "original")

	entries := l.Entries()
	entries[0].Message = "tampered"

	if l.Messages()[0] != "original" {
		t.Errorf("log was mutated through Entries()")
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		Rejected:  "rejected",
		Trade:     "trade",
		Cancelled: "cancelled",
		Triggered: "triggered",
		Kind(42):  "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
