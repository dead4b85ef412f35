package model

import "time"

// NoIndex marks an absent cross-reference.
const NoIndex = -1

// Window is the half-open index range searched for a START's counterparts.
// Start is the START's own index and is excluded; End is exclusive.
type Window struct {
	Start int
	End   int
}

// Contains reports whether index i lies strictly inside the window.
func (w Window) Contains(i int) bool {
	return i > w.Start && i < w.End
}

// Len returns the number of indices strictly inside the window.
func (w Window) Len() int {
	if w.End <= w.Start+1 {
		return 0
	}
	return w.End - w.Start - 1
}

// MatchCriteria records why a counterpart scored the way it did.
type MatchCriteria struct {
	TimeGap   time.Duration
	NameMatch bool
	HasVolume bool
}

// MatchResult links a START to a chosen counterpart message.
type MatchResult struct {
	Criteria MatchCriteria
	Index    int
	Score    int
}

// NoWindow is the window of a row that is not a START.
var NoWindow = Window{Start: NoIndex, End: NoIndex}

// Valid reports whether the window belongs to a START.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.End > w.Start
}
