// Package notify holds the append-only notification log the engine writes
// rejections, trades, cancellations and triggers to. The engine never reads
// it back; it exists for whoever renders the venue state.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uhyunpark/tradesim/pkg/util"
)

// Kind classifies a notification.
type Kind int8

const (
	Rejected Kind = iota
	Trade
	Cancelled
	Triggered
)

func (k Kind) String() string {
	switch k {
	case Rejected:
		return "rejected"
	case Trade:
		return "trade"
	case Cancelled:
		return "cancelled"
	case Triggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Entry is one line of the log. Entries carry no reference to the order
// that produced them.
type Entry struct {
	Seq     uint64    // 1-based position in the log
	ID      uuid.UUID // stable handle for UIs that key rows
	Kind    Kind
	Message string
	At      time.Time
}

func (e Entry) String() string { return e.Message }

// Log is an unbounded, ordered, append-only sequence of entries.
type Log struct {
	mu      sync.Mutex
	clock   util.Clock
	entries []Entry
}

func NewLog(clock util.Clock) *Log {
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Log{clock: clock}
}

// Append formats and records a new entry and returns a copy of it.
func (l *Log) Append(kind Kind, format string, args ...any) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Seq:     uint64(len(l.entries)) + 1,
		ID:      uuid.New(),
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		At:      l.clock.Now(),
	}
	l.entries = append(l.entries, e)
	return e
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of every entry in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns the message text of every entry in append order.
func (l *Log) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Message
	}
	return out
}

// Since returns the entries appended after sequence number seq.
// Since(0) is equivalent to Entries.
func (l *Log) Since(seq uint64) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq >= uint64(len(l.entries)) {
		return nil
	}
	return append([]Entry(nil), l.entries[seq:]...)
}

// Tail returns at most the last n entries.
func (l *Log) Tail(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(l.entries) - n
	if start < 0 {
		start = 0
	}
	return append([]Entry(nil), l.entries[start:]...)
}
