package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// DateLayout is the canonical layout of a message's calendar date.
const DateLayout = "2006-01-02"

// ClockLayout is the canonical layout of a message's time of day.
const ClockLayout = "15:04:05"

// Message is a single chat line as delivered by the upstream loader.
// Messages are immutable once read; their position in the input slice is their index.
type Message struct {
	Timestamp  time.Time // Calendar date plus HH:MM:SS clock
	Bank       string    // Resolved counterparty bank code of the sender
	TraderName string
	Text       string
}

// DateKey returns the calendar date the message belongs to.
func (m Message) DateKey() string {
	return m.Timestamp.Format(DateLayout)
}

// Clock returns the HH:MM:SS time of day.
func (m Message) Clock() string {
	return m.Timestamp.Format(ClockLayout)
}

// Hash creates a stable fingerprint used to key persisted rows.
func (m Message) Hash() string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		m.Timestamp.Format(time.RFC3339),
		m.Bank,
		m.TraderName,
		m.Text)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}
