package matching

import (
	"context"
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// ConfirmMatcher finds the confirmation that settles each replied START.
type ConfirmMatcher struct {
	window time.Duration
}

// NewConfirmMatcher creates a confirm matcher. A non-positive window falls
// back to DefaultConfirmWindow.
func NewConfirmMatcher(window time.Duration) *ConfirmMatcher {
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	return &ConfirmMatcher{window: window}
}

// Match links every START that has a reply to the first unclaimed CONFIRM in
// its window sent by the quoting or replying trader whose status is known.
// STARTs claim confirmations in row order.
func (m *ConfirmMatcher) Match(ctx context.Context, in Input, replies Assignment) (Assignment, error) {
	if err := in.validate(); err != nil {
		return Assignment{}, err
	}

	out := newAssignment(len(in.Messages))
	for s, w := range in.Windows {
		if !w.Valid() || !replies.Matched(s) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Assignment{}, err
		}

		start := in.Messages[s]
		replyTrader := in.Messages[replies.Matches[s].Index].TraderName
		date := start.DateKey()

		for j := w.Start + 1; j < w.End; j++ {
			if in.Classifications[j].Intent != model.IntentConfirm || out.Owners[j] != model.NoIndex {
				continue
			}
			msg := in.Messages[j]
			if msg.DateKey() != date {
				continue
			}
			if msg.TraderName != start.TraderName && msg.TraderName != replyTrader {
				continue
			}
			g := gap(in.Messages, s, j)
			if g < 0 || g > m.window {
				continue
			}
			confirm := in.Entities[j].Confirm
			if confirm == nil || confirm.Status == model.StatusUnknown {
				continue
			}

			out.Matches[s] = model.MatchResult{
				Index: j,
				Criteria: model.MatchCriteria{
					TimeGap:   g,
					HasVolume: confirm.Volume != nil,
				},
			}
			out.Owners[j] = s
			break
		}
	}
	return out, nil
}
