package chat

// Line is one scripted chat message.
type Line struct {
	Trader Trader
	Clock  string
	Text   string
}

// Fixture is a predefined conversation for a test scenario.
type Fixture interface {
	// Name returns the fixture's descriptive name.
	Name() string
	// Lines returns the conversation in chronological order.
	Lines() []Line
}

type fixture struct {
	name  string
	lines []Line
}

func (f *fixture) Name() string  { return f.name }
func (f *fixture) Lines() []Line { return f.lines }

// Predefined conversations.
var (
	// FixtureSimpleDeal is a bid, a reply with volume and a confirmation.
	FixtureSimpleDeal = &fixture{
		name: "SimpleDeal",
		lines: []Line{
			{Clock: "09:15:30", Trader: TraderToan, Text: "bid 25 3u"},
			{Clock: "09:16:10", Trader: TraderMinh, Text: "buy 2u"},
			{Clock: "09:16:45", Trader: TraderToan, Text: "done"},
		},
	}

	// FixtureOfferDeal is an offer taken by name and confirmed by the replier.
	FixtureOfferDeal = &fixture{
		name: "OfferDeal",
		lines: []Line{
			{Clock: "10:02:00", Trader: TraderHoa, Text: "offer 31 5u"},
			{Clock: "10:02:40", Trader: TraderDuc, Text: "sell hoa 5u"},
			{Clock: "10:03:05", Trader: TraderDuc, Text: "ok hoa"},
		},
	}

	// FixtureNoReply is a quote nobody answers.
	FixtureNoReply = &fixture{
		name: "NoReply",
		lines: []Line{
			{Clock: "11:00:00", Trader: TraderMinh, Text: "bid 40 2u"},
			{Clock: "11:00:30", Trader: TraderMinh, Text: "anyone?"},
		},
	}

	// FixtureBusyMorning interleaves two deals, a rejected quote and noise.
	FixtureBusyMorning = &fixture{
		name: "BusyMorning",
		lines: []Line{
			{Clock: "09:00:00", Trader: TraderToan, Text: "good morning"},
			{Clock: "09:01:00", Trader: TraderToan, Text: "bid 20 ask 23, 3u"},
			{Clock: "09:01:10", Trader: TraderHoa, Text: "offer 28 2u"},
			{Clock: "09:01:40", Trader: TraderMinh, Text: "sell toan 3u"},
			{Clock: "09:02:00", Trader: TraderDuc, Text: "buy hoa 1u"},
			{Clock: "09:02:20", Trader: TraderToan, Text: "done minh"},
			{Clock: "09:02:30", Trader: TraderHoa, Text: "done"},
			{Clock: "09:05:00", Trader: TraderMinh, Text: "bid 21 5u"},
			{Clock: "09:05:30", Trader: TraderDuc, Text: "sell minh 5u"},
			{Clock: "09:06:00", Trader: TraderMinh, Text: "not suit"},
		},
	}
)
