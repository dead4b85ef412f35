package classification

import (
	"fmt"
	"time"
)

// Rule set names accepted by RuleSetByName.
const (
	RuleSetUniversal = "universal"
	RuleSetStrict    = "strict"
)

// RuleSet configures which cues the classifier reacts to. Variants of the
// classification heuristics are expressed as rule sets rather than separate code paths.
type RuleSet struct {
	Name             string
	ConfirmKeywords  []string
	RejectKeywords   []string // Confirmation words that decline the quote
	AckKeywords      []string // Confirmation words that only acknowledge it
	ReplyKeywords    []string
	BidAskKeywords   []string
	TimeKeywords     []string
	QuickReplyWindow time.Duration // Lookahead for single-number quotes; zero disables it
	VolumeOnlyStart  bool          // Accept a bare volume ("3u") as an opening quote
	NameBoost        bool          // Raise confidence when a roster name is mentioned
}

// DefaultRules returns the universal rule set.
func DefaultRules() RuleSet {
	return RuleSet{
		Name:             RuleSetUniversal,
		ConfirmKeywords:  []string{"done", "ok", "oke", "oki", "not suit", "tks", "thanks"},
		RejectKeywords:   []string{"not suit"},
		AckKeywords:      []string{"tks", "thanks"},
		ReplyKeywords:    []string{"buy", "sell", "khớp"},
		BidAskKeywords:   []string{"bid", "ask", "offer", "off", "bán", "mua", "có", "còn"},
		TimeKeywords:     []string{"on", "spt", "spot", "1m", "1w", "2m", "3m", "6m", "6w"},
		QuickReplyWindow: 30 * time.Second,
		VolumeOnlyStart:  true,
		NameBoost:        true,
	}
}

// StrictRules only opens quotes on explicit bid/ask keywords or two-number spreads.
func StrictRules() RuleSet {
	rules := DefaultRules()
	rules.Name = RuleSetStrict
	rules.QuickReplyWindow = 0
	rules.VolumeOnlyStart = false
	return rules
}

// RuleSetByName resolves a configured rule set name.
func RuleSetByName(name string) (RuleSet, error) {
	switch name {
	case "", RuleSetUniversal:
		return DefaultRules(), nil
	case RuleSetStrict:
		return StrictRules(), nil
	}
	return RuleSet{}, fmt.Errorf("%w: %q", ErrUnknownRuleSet, name)
}
