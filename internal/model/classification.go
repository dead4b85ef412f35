// Package model defines the core domain models used throughout the application.
package model

// Intent labels the role a message plays in a deal conversation.
type Intent string

// Intent constants.
const (
	IntentStart   Intent = "START"
	IntentReply   Intent = "REPLY"
	IntentConfirm Intent = "CONFIRM"
	IntentNoise   Intent = "NOISE"
)

// Valid reports whether the intent is one of the known labels.
func (i Intent) Valid() bool {
	switch i {
	case IntentStart, IntentReply, IntentConfirm, IntentNoise:
		return true
	}
	return false
}

// Classification is the classifier's verdict for one message.
type Classification struct {
	Intent        Intent
	MentionedName string   // Roster name recognized in the text, if any
	Signals       []string // Rules or guards that fired, for debugging
	Confidence    float64
}

// Noise returns a NOISE classification with zero confidence.
func Noise(signals ...string) Classification {
	return Classification{
		Intent:  IntentNoise,
		Signals: signals,
	}
}
