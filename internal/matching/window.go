// Package matching links each opening quote to the reply and confirmation
// that complete it.
package matching

import (
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// Default matching limits.
const (
	DefaultReplyWindow   = 5 * time.Minute
	DefaultConfirmWindow = 5 * time.Minute
)

// Assignment is a pair of link columns produced by a matcher. Matches is
// indexed by START row; Owners is indexed by counterpart row and holds the
// START that claimed it.
type Assignment struct {
	Matches []model.MatchResult
	Owners  []int
}

func newAssignment(n int) Assignment {
	a := Assignment{
		Matches: make([]model.MatchResult, n),
		Owners:  make([]int, n),
	}
	for i := range a.Matches {
		a.Matches[i] = model.MatchResult{Index: model.NoIndex}
		a.Owners[i] = model.NoIndex
	}
	return a
}

// Matched reports whether the START at row i was linked to a counterpart.
func (a Assignment) Matched(i int) bool {
	return i >= 0 && i < len(a.Matches) && a.Matches[i].Index != model.NoIndex
}

type windowKey struct {
	date   string
	trader string
}

// BuildWindows returns one window per row. A START's window runs from the
// START itself to the next START by the same trader on the same date, or to
// the end of the table. Other rows get model.NoWindow.
func BuildWindows(msgs []model.Message, classes []model.Classification) []model.Window {
	windows := make([]model.Window, len(msgs))
	open := make(map[windowKey]int)

	for i, msg := range msgs {
		windows[i] = model.NoWindow
		if classes[i].Intent != model.IntentStart {
			continue
		}
		key := windowKey{date: msg.DateKey(), trader: msg.TraderName}
		if prev, ok := open[key]; ok {
			windows[prev].End = i
		}
		windows[i] = model.Window{Start: i, End: len(msgs)}
		open[key] = i
	}
	return windows
}

// gap returns the time elapsed from the START to a later row.
func gap(msgs []model.Message, start, i int) time.Duration {
	return msgs[i].Timestamp.Sub(msgs[start].Timestamp)
}
