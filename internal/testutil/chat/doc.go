// Package chat provides test infrastructure for building ordered chat tables.
//
// # Basic Usage
//
//	msgs := chat.NewBuilder(t).
//		Say("09:15:30", chat.TraderToan, "bid 25 3u").
//		Say("09:16:10", chat.TraderMinh, "buy 2u").
//		Say("09:16:45", chat.TraderToan, "done").
//		Build()
//
// # Using Fixtures
//
// Fixtures replay complete conversations:
//
//	msgs := chat.NewBuilder(t).WithFixture(chat.FixtureSimpleDeal).Build()
//
// Traders carry a bank code so tests never need a separate bank mapping.
package chat
