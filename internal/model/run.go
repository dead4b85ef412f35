package model

import "time"

// Run summarizes one pipeline execution over a batch of messages.
type Run struct {
	StartedAt      time.Time
	ID             string
	Source         string
	IntentCounts   map[Intent]int
	MessageCount   int
	DealCount      int
	RejectionCount int
}

// IntentRecord is the persisted classification of one message within a run.
type IntentRecord struct {
	RunID         string
	MessageHash   string
	Intent        Intent
	MentionedName string
	Index         int
	Confidence    float64
}
