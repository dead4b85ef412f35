package chat

import (
	"testing"
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// DefaultDate is the trading day used unless OnDate is called.
const DefaultDate = "2025-03-14"

// Trader is a strongly-typed test participant.
type Trader struct {
	Name string
	Bank string
}

// Common traders used across tests.
var (
	TraderToan = Trader{Name: "Nguyễn Văn Toàn", Bank: "VCB"}
	TraderMinh = Trader{Name: "Lê Minh", Bank: "TCB"}
	TraderHoa  = Trader{Name: "Trần Thị Hoa", Bank: "ACB"}
	TraderDuc  = Trader{Name: "Phạm Đức", Bank: "BIDV"}
	// TraderToanDesk2 shares Toan's bank, for same-bank scenarios.
	TraderToanDesk2 = Trader{Name: "Võ Hải", Bank: "VCB"}
)

// Builder provides a fluent interface for constructing a chat table.
type Builder struct {
	t    *testing.T
	day  time.Time
	msgs []model.Message
}

// NewBuilder starts an empty table on DefaultDate.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	b := &Builder{t: t}
	return b.OnDate(DefaultDate)
}

// OnDate switches subsequent messages to another trading day.
func (b *Builder) OnDate(date string) *Builder {
	b.t.Helper()
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		b.t.Fatalf("invalid test date %q: %v", date, err)
	}
	b.day = day
	return b
}

// Say appends a message at the given HH:MM:SS clock time.
func (b *Builder) Say(clock string, trader Trader, text string) *Builder {
	b.t.Helper()
	b.msgs = append(b.msgs, model.Message{
		Timestamp:  At(b.t, b.day.Format(model.DateLayout), clock),
		Bank:       trader.Bank,
		TraderName: trader.Name,
		Text:       text,
	})
	return b
}

// WithFixture appends a predefined conversation.
func (b *Builder) WithFixture(f Fixture) *Builder {
	b.t.Helper()
	for _, line := range f.Lines() {
		b.Say(line.Clock, line.Trader, line.Text)
	}
	return b
}

// Build returns a copy of the accumulated messages.
func (b *Builder) Build() []model.Message {
	out := make([]model.Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Traders returns the distinct trader names in message order.
func (b *Builder) Traders() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, m := range b.msgs {
		if _, ok := seen[m.TraderName]; ok {
			continue
		}
		seen[m.TraderName] = struct{}{}
		names = append(names, m.TraderName)
	}
	return names
}

// At parses a date and clock into a timestamp or fails the test.
func At(t *testing.T, date, clock string) time.Time {
	t.Helper()
	ts, err := time.Parse(model.DateLayout+" "+model.ClockLayout, date+" "+clock)
	if err != nil {
		t.Fatalf("invalid test timestamp %s %s: %v", date, clock, err)
	}
	return ts
}
