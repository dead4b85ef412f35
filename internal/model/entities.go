package model

// Side is the direction of the quoting trader.
type Side string

// Side constants.
const (
	SideBid     Side = "bid"
	SideOffer   Side = "offer"
	SideUnknown Side = "unknown"
)

// Action is what a replying trader wants to do.
type Action string

// Action constants.
const (
	ActionBuy     Action = "buy"
	ActionSell    Action = "sell"
	ActionMatch   Action = "match"
	ActionUnknown Action = "unknown"
)

// ConfirmStatus is the outcome stated by a confirmation message.
type ConfirmStatus string

// ConfirmStatus constants.
const (
	StatusConfirmed    ConfirmStatus = "confirmed"
	StatusRejected     ConfirmStatus = "rejected"
	StatusAcknowledged ConfirmStatus = "acknowledged"
	StatusUnknown      ConfirmStatus = "unknown"
)

// Extraction problem codes.
const (
	ProblemPriceOutOfRange    = "price_out_of_range"
	ProblemNoPrice            = "no_price"
	ProblemNoValidPriceVolume = "no_valid_price_with_volume"
	ProblemUnclearSideSpread  = "unclear_side_with_spread"
)

// StartEntities are the fields of an opening quote.
type StartEntities struct {
	Price    *int     // Always within 0-99 when set
	RawPrice *float64 // Out-of-range price candidate, kept for the assembly price policy
	Volume   *float64
	Bid      *int
	Ask      *int
	Side     Side
	Numbers  []float64
}

// ReplyEntities are the fields of a reply to a quote.
type ReplyEntities struct {
	Volume       *float64
	Action       Action
	TargetTrader string
}

// ConfirmEntities are the fields of a confirmation.
type ConfirmEntities struct {
	Volume       *float64
	Counterparty string
	Status       ConfirmStatus
}

// Entities is the intent-dependent payload extracted from a message.
// Exactly one of Start, Reply or Confirm is set for non-noise messages.
type Entities struct {
	Start    *StartEntities
	Reply    *ReplyEntities
	Confirm  *ConfirmEntities
	Problems []string
}

// Volume returns whichever volume the payload carries.
func (e Entities) Volume() *float64 {
	switch {
	case e.Start != nil:
		return e.Start.Volume
	case e.Reply != nil:
		return e.Reply.Volume
	case e.Confirm != nil:
		return e.Confirm.Volume
	}
	return nil
}

// HasProblem reports whether the given problem code was recorded.
func (e Entities) HasProblem(code string) bool {
	for _, p := range e.Problems {
		if p == code {
			return true
		}
	}
	return false
}
