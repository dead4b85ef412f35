package assembly

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/testutil/chat"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func newCandidate(t *testing.T, start *model.StartEntities, replyVol, confirmVol *float64) Candidate {
	t.Helper()
	msgs := chat.NewBuilder(t).WithFixture(chat.FixtureSimpleDeal).Build()
	return Candidate{
		Start:        msgs[0],
		Reply:        msgs[1],
		Confirm:      msgs[2],
		StartData:    model.Entities{Start: start},
		ReplyData:    model.Entities{Reply: &model.ReplyEntities{Action: model.ActionBuy, Volume: replyVol}},
		ConfirmData:  model.Entities{Confirm: &model.ConfirmEntities{Status: model.StatusConfirmed, Volume: confirmVol}},
		StartIndex:   0,
		ReplyIndex:   1,
		ConfirmIndex: 2,
	}
}

func TestAssembler_Assemble(t *testing.T) {
	tests := []struct {
		name       string
		policy     func(p *Policy)
		start      *model.StartEntities
		replyVol   *float64
		confirmVol *float64
		sameBank   bool
		wantReason string
		wantBuy    string
		wantSell   string
		wantAmount string
		wantPrice  int
		wantActual string
	}{
		{
			name:       "bid quote takes the smallest volume",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25), Volume: floatPtr(3)},
			replyVol:   floatPtr(2),
			wantBuy:    chat.TraderToan.Bank,
			wantSell:   chat.TraderMinh.Bank,
			wantAmount: "2",
			wantPrice:  25,
			wantActual: "25325",
		},
		{
			name:       "offer quote inverts sides",
			start:      &model.StartEntities{Side: model.SideOffer, Price: intPtr(31), Volume: floatPtr(5)},
			replyVol:   floatPtr(5),
			confirmVol: floatPtr(4.5),
			wantBuy:    chat.TraderMinh.Bank,
			wantSell:   chat.TraderToan.Bank,
			wantAmount: "4.5",
			wantPrice:  31,
			wantActual: "25331",
		},
		{
			name:       "start volume policy",
			policy:     func(p *Policy) { p.Volume = VolumeStart },
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25), Volume: floatPtr(3)},
			replyVol:   floatPtr(2),
			wantBuy:    chat.TraderToan.Bank,
			wantSell:   chat.TraderMinh.Bank,
			wantAmount: "3",
			wantPrice:  25,
			wantActual: "25325",
		},
		{
			name:       "start volume policy falls back",
			policy:     func(p *Policy) { p.Volume = VolumeStart },
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25)},
			replyVol:   floatPtr(2),
			wantBuy:    chat.TraderToan.Bank,
			wantSell:   chat.TraderMinh.Bank,
			wantAmount: "2",
			wantPrice:  25,
			wantActual: "25325",
		},
		{
			name:       "modulo price from raw candidate",
			start:      &model.StartEntities{Side: model.SideBid, RawPrice: floatPtr(325), Volume: floatPtr(1)},
			wantBuy:    chat.TraderToan.Bank,
			wantSell:   chat.TraderMinh.Bank,
			wantAmount: "1",
			wantPrice:  25,
			wantActual: "25325",
		},
		{
			name:       "custom market offset",
			policy:     func(p *Policy) { p.MarketOffset = 24000 },
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(5), Volume: floatPtr(1)},
			wantBuy:    chat.TraderToan.Bank,
			wantSell:   chat.TraderMinh.Bank,
			wantAmount: "1",
			wantPrice:  5,
			wantActual: "24005",
		},
		{
			name:       "strict price rejects raw candidate",
			policy:     func(p *Policy) { p.Price = PriceStrict },
			start:      &model.StartEntities{Side: model.SideBid, RawPrice: floatPtr(325), Volume: floatPtr(1)},
			wantReason: model.ReasonNoPrice,
		},
		{
			name:       "unknown side",
			start:      &model.StartEntities{Side: model.SideUnknown, Price: intPtr(25), Volume: floatPtr(1)},
			wantReason: model.ReasonUnclearSide,
		},
		{
			name:       "unknown side is checked before volume",
			start:      &model.StartEntities{Side: model.SideUnknown},
			wantReason: model.ReasonUnclearSide,
		},
		{
			name:       "no volume anywhere",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25)},
			wantReason: model.ReasonNoVolume,
		},
		{
			name:       "no price",
			start:      &model.StartEntities{Side: model.SideOffer, Volume: floatPtr(1)},
			wantReason: model.ReasonNoPrice,
		},
		{
			name:       "same bank on both sides",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25), Volume: floatPtr(1)},
			sameBank:   true,
			wantReason: model.ReasonSameBankSides,
		},
		{
			name:       "volume too small",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25), Volume: floatPtr(0.05)},
			wantReason: model.ReasonVolumeOutOfRange,
		},
		{
			name:       "volume too large",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(25), Volume: floatPtr(500)},
			wantReason: model.ReasonVolumeOutOfRange,
		},
		{
			name:       "price outside two digits",
			start:      &model.StartEntities{Side: model.SideBid, Price: intPtr(120), Volume: floatPtr(1)},
			wantReason: model.ReasonPriceOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := DefaultPolicy()
			if tt.policy != nil {
				tt.policy(&policy)
			}
			a, err := New(policy)
			require.NoError(t, err)

			c := newCandidate(t, tt.start, tt.replyVol, tt.confirmVol)
			if tt.sameBank {
				c.Reply.Bank = c.Start.Bank
			}

			deal, err := a.Assemble(c)

			if tt.wantReason != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
				assert.Equal(t, tt.wantReason, verr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBuy, deal.BuyBank)
			assert.Equal(t, tt.wantSell, deal.SellBank)
			assert.NotEqual(t, deal.BuyBank, deal.SellBank)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(deal.Amount), "amount %s", deal.Amount)
			assert.Equal(t, tt.wantPrice, deal.Price)
			assert.True(t, decimal.RequireFromString(tt.wantActual).Equal(deal.ActualPrice), "actual %s", deal.ActualPrice)
			assert.Equal(t, chat.DefaultDate, deal.Date)
			assert.Equal(t, "09:15:30", deal.Time)
			assert.Equal(t, 0, deal.StartIndex)
			assert.Equal(t, 1, deal.ReplyIndex)
			assert.Equal(t, 2, deal.ConfirmIndex)
		})
	}
}

func TestAssembler_RequiresQuoteEntities(t *testing.T) {
	a, err := New(DefaultPolicy())
	require.NoError(t, err)

	c := newCandidate(t, nil, nil, nil)
	_, err = a.Assemble(c)

	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Policy)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Policy) {}},
		{name: "unknown volume policy", mutate: func(p *Policy) { p.Volume = "max" }, wantErr: ErrUnknownPolicy},
		{name: "unknown price policy", mutate: func(p *Policy) { p.Price = "round" }, wantErr: ErrUnknownPolicy},
		{name: "inverted range", mutate: func(p *Policy) { p.VolumeMin, p.VolumeMax = 10, 1 }, wantErr: ErrInvalidVolumeRange},
		{name: "zero max", mutate: func(p *Policy) { p.VolumeMax = 0 }, wantErr: ErrInvalidVolumeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
