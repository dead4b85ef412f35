package engine

import (
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// Stats summarizes a pipeline run.
type Stats struct {
	IntentCounts     map[model.Intent]int
	RejectionReasons map[string]int
	StageDurations   map[Stage]time.Duration
	AvgReplyGap      time.Duration
	Duration         time.Duration
	Messages         int
	Starts           int
	Replied          int
	Confirmed        int
	Deals            int
	Rejections       int
}

func newStats() Stats {
	return Stats{
		IntentCounts:     make(map[model.Intent]int),
		RejectionReasons: make(map[string]int),
		StageDurations:   make(map[Stage]time.Duration),
	}
}

func (s *Stats) collect(table Table, deals []model.Deal, rejections []model.Rejection) {
	s.Messages = table.Len()
	for _, cls := range table.Classifications() {
		s.IntentCounts[cls.Intent]++
	}
	s.Starts = s.IntentCounts[model.IntentStart]

	var gaps time.Duration
	replies := table.Replies()
	confirms := table.Confirms()
	for i := range table.Messages() {
		if replies.Matched(i) {
			s.Replied++
			gaps += replies.Matches[i].Criteria.TimeGap
		}
		if confirms.Matched(i) {
			s.Confirmed++
		}
	}
	if s.Replied > 0 {
		s.AvgReplyGap = gaps / time.Duration(s.Replied)
	}

	s.Deals = len(deals)
	s.Rejections = len(rejections)
	for _, r := range rejections {
		s.RejectionReasons[r.Reason]++
	}
}

// ReplyRate is the share of STARTs that found a reply.
func (s Stats) ReplyRate() float64 {
	return ratio(s.Replied, s.Starts)
}

// ConfirmRate is the share of replied STARTs that found a confirmation.
func (s Stats) ConfirmRate() float64 {
	return ratio(s.Confirmed, s.Replied)
}

// DealRate is the share of STARTs that became deals.
func (s Stats) DealRate() float64 {
	return ratio(s.Deals, s.Starts)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
