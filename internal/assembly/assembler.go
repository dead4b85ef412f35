package assembly

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/dealflow/internal/model"
)

// Candidate is a START with its matched REPLY and confirmed CONFIRM.
type Candidate struct {
	Start        model.Message
	Reply        model.Message
	Confirm      model.Message
	StartData    model.Entities
	ReplyData    model.Entities
	ConfirmData  model.Entities
	StartIndex   int
	ReplyIndex   int
	ConfirmIndex int
}

// ValidationError reports why a candidate failed assembly.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "deal validation failed: " + e.Reason
}

func reject(reason string) error {
	return &ValidationError{Reason: reason}
}

// Assembler validates candidates and builds deals.
type Assembler struct {
	offset decimal.Decimal
	policy Policy
}

// New creates an assembler for the given policy.
func New(policy Policy) (*Assembler, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{policy: policy, offset: decimal.NewFromInt(policy.MarketOffset)}, nil
}

// Policy returns the policy in use.
func (a *Assembler) Policy() Policy {
	return a.policy
}

// Assemble builds the deal for c or returns a *ValidationError with the first
// failed check.
func (a *Assembler) Assemble(c Candidate) (model.Deal, error) {
	start := c.StartData.Start
	if start == nil {
		return model.Deal{}, fmt.Errorf("row %d carries no quote entities", c.StartIndex)
	}

	var buyBank, sellBank string
	switch start.Side {
	case model.SideBid:
		buyBank, sellBank = c.Start.Bank, c.Reply.Bank
	case model.SideOffer:
		buyBank, sellBank = c.Reply.Bank, c.Start.Bank
	default:
		return model.Deal{}, reject(model.ReasonUnclearSide)
	}

	volume, ok := a.volume(c)
	if !ok {
		return model.Deal{}, reject(model.ReasonNoVolume)
	}

	price, ok := a.price(start)
	if !ok {
		return model.Deal{}, reject(model.ReasonNoPrice)
	}

	if buyBank == sellBank {
		return model.Deal{}, reject(model.ReasonSameBankSides)
	}
	if volume < a.policy.VolumeMin || volume > a.policy.VolumeMax {
		return model.Deal{}, reject(model.ReasonVolumeOutOfRange)
	}
	if price < 0 || price > 99 {
		return model.Deal{}, reject(model.ReasonPriceOutOfRange)
	}

	return model.Deal{
		StartIndex:   c.StartIndex,
		ReplyIndex:   c.ReplyIndex,
		ConfirmIndex: c.ConfirmIndex,
		Date:         c.Start.DateKey(),
		Time:         c.Start.Clock(),
		BuyBank:      buyBank,
		SellBank:     sellBank,
		Amount:       decimal.NewFromFloat(volume),
		Price:        price,
		ActualPrice:  decimal.NewFromInt(int64(price)).Add(a.offset),
	}, nil
}

func (a *Assembler) volume(c Candidate) (float64, bool) {
	if a.policy.Volume == VolumeStart && c.StartData.Start.Volume != nil {
		return *c.StartData.Start.Volume, true
	}

	found := false
	lowest := math.Inf(1)
	for _, v := range []*float64{c.StartData.Volume(), c.ReplyData.Volume(), c.ConfirmData.Volume()} {
		if v == nil {
			continue
		}
		found = true
		lowest = math.Min(lowest, *v)
	}
	return lowest, found
}

func (a *Assembler) price(start *model.StartEntities) (int, bool) {
	if start.Price != nil {
		return *start.Price, true
	}
	if a.policy.Price == PriceModulo && start.RawPrice != nil {
		return int(math.Floor(*start.RawPrice)) % 100, true
	}
	return 0, false
}
