// Package classification labels chat messages with their role in a deal.
package classification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/dealflow/internal/lexicon"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/normalize"
)

// ErrUnknownRuleSet is returned for rule set names that are not registered.
var ErrUnknownRuleSet = errors.New("unknown classification rule set")

// Confidence levels per rule.
const (
	confidenceConfirm      = 0.8
	confidenceReply        = 0.7
	confidenceNamed        = 0.9
	confidenceQuickReply   = 0.9
	confidenceBidAsk       = 0.8
	confidenceSpread       = 0.7
	confidenceVolumeOnly   = 0.6
	confidenceConfirmNamed = 0.9
)

// Signals recorded on classifications.
const (
	SignalNegativeNumber = "negative_number_excluded"
	SignalConfirmKeyword = "confirm_keyword"
	SignalReplyKeyword   = "reply_keyword"
	SignalNamed          = "name_mentioned"
	SignalQuickReply     = "single_number_quick_reply"
	SignalBidAsk         = "bid_ask_keyword"
	SignalSpread         = "two_number_spread"
	SignalVolumeUnit     = "volume_unit"
	SignalTimeExclusion  = "time_exclusion"
	SignalNoNumbers      = "no_numbers"
)

// Classifier implements rule-based intent classification.
type Classifier struct {
	roster  *normalize.Roster
	confirm *lexicon.KeywordSet
	reply   *lexicon.KeywordSet
	bidAsk  *lexicon.KeywordSet
	timing  *lexicon.KeywordSet
	rules   RuleSet
}

// NewClassifier compiles a rule set against a fixed trader roster.
func NewClassifier(rules RuleSet, roster *normalize.Roster) (*Classifier, error) {
	c := &Classifier{rules: rules, roster: roster}

	sets := []struct {
		dst   **lexicon.KeywordSet
		name  string
		words []string
	}{
		{&c.confirm, "confirm", rules.ConfirmKeywords},
		{&c.reply, "reply", rules.ReplyKeywords},
		{&c.bidAsk, "bid/ask", rules.BidAskKeywords},
		{&c.timing, "time", rules.TimeKeywords},
	}
	for _, s := range sets {
		ks, err := lexicon.NewKeywordSet(s.words...)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s keywords: %w", s.name, err)
		}
		*s.dst = ks
	}

	return c, nil
}

// Rules returns the rule set in use.
func (c *Classifier) Rules() RuleSet {
	return c.rules
}

// Classify labels msgs[idx]. It reads only the message text, except for
// single-number quotes, which look ahead for a quick reply from another trader.
func (c *Classifier) Classify(msgs []model.Message, idx int) model.Classification {
	msg := msgs[idx]
	text := lexicon.Prepare(msg.Text)

	if lexicon.HasNegativeNumber(text) {
		return model.Noise(SignalNegativeNumber)
	}

	if c.confirm.Contains(text) {
		return c.named(text, model.IntentConfirm, confidenceConfirm, confidenceConfirmNamed, SignalConfirmKeyword)
	}

	if c.reply.Contains(text) {
		return c.named(text, model.IntentReply, confidenceReply, confidenceNamed, SignalReplyKeyword)
	}

	numbers := lexicon.Numbers(text)
	hasBidAsk := c.bidAsk.Contains(text)
	if len(numbers) == 0 {
		if hasBidAsk {
			return model.Noise(SignalNoNumbers)
		}
		return model.Noise()
	}
	if c.timing.Contains(text) {
		return model.Noise(SignalTimeExclusion)
	}

	switch {
	case len(numbers) == 1 && c.hasQuickReply(msgs, idx):
		return start(confidenceQuickReply, SignalQuickReply)
	case hasBidAsk:
		return start(confidenceBidAsk, SignalBidAsk)
	case len(numbers) == 2 && lexicon.HasSpread(text):
		return start(confidenceSpread, SignalSpread)
	case c.rules.VolumeOnlyStart && lexicon.HasVolumeUnit(text):
		return start(confidenceVolumeOnly, SignalVolumeUnit)
	}

	return model.Noise()
}

// ClassifyAll classifies every message of the batch.
func (c *Classifier) ClassifyAll(ctx context.Context, msgs []model.Message) ([]model.Classification, error) {
	out := make([]model.Classification, len(msgs))
	for i := range msgs {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out[i] = c.Classify(msgs, i)
	}
	return out, nil
}

func (c *Classifier) named(text string, intent model.Intent, base, boosted float64, signal string) model.Classification {
	cls := model.Classification{
		Intent:     intent,
		Confidence: base,
		Signals:    []string{signal},
	}
	if name, ok := c.roster.Find(text); ok {
		cls.MentionedName = name
		cls.Signals = append(cls.Signals, SignalNamed)
		if c.rules.NameBoost {
			cls.Confidence = boosted
		}
	}
	return cls
}

// hasQuickReply reports whether another trader answers with a reply keyword
// within the rule set's lookahead window on the same day.
func (c *Classifier) hasQuickReply(msgs []model.Message, idx int) bool {
	if c.rules.QuickReplyWindow <= 0 {
		return false
	}
	msg := msgs[idx]
	date := msg.DateKey()

	for j := idx + 1; j < len(msgs); j++ {
		next := msgs[j]
		if next.DateKey() != date {
			return false
		}
		gap := next.Timestamp.Sub(msg.Timestamp)
		if gap > c.rules.QuickReplyWindow {
			return false
		}
		if gap <= 0 || next.TraderName == msg.TraderName {
			continue
		}
		if c.reply.Contains(lexicon.Prepare(next.Text)) {
			return true
		}
	}
	return false
}

func start(confidence float64, signal string) model.Classification {
	return model.Classification{
		Intent:     model.IntentStart,
		Confidence: confidence,
		Signals:    []string{signal},
	}
}
