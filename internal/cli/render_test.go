package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/engine"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/testutil/chat"
)

func TestRenderDeals(t *testing.T) {
	out := RenderDeals([]model.Deal{{
		Date:        "2024-03-01",
		Time:        "09:00:00",
		BuyBank:     "VCB",
		SellBank:    "TCB",
		Amount:      decimal.NewFromInt(3),
		Price:       5,
		ActualPrice: decimal.NewFromInt(25305),
		StartIndex:  4,
	}})

	assert.Contains(t, out, "VCB")
	assert.Contains(t, out, "TCB")
	assert.Contains(t, out, "05")
	assert.Contains(t, out, "25305")
	assert.Contains(t, RenderDeals(nil), "No deals.")
}

func TestRenderRejections(t *testing.T) {
	msgs := []model.Message{{TraderName: "Toan", Text: "bid 20 3u"}}
	out := RenderRejections([]model.Rejection{
		{StartIndex: 0, Stage: model.StageReplyMatching, Reason: model.ReasonReplyNotFound},
		{StartIndex: 9, Stage: model.StageAssembly, Reason: model.ReasonNoPrice},
	}, msgs)

	assert.Contains(t, out, "reply_not_found")
	assert.Contains(t, out, "Toan: bid 20 3u")
	assert.Contains(t, out, "no_price")
	assert.Contains(t, RenderRejections(nil, nil), "No rejections.")
}

func TestRenderRuns(t *testing.T) {
	out := RenderRuns([]model.Run{{
		ID:             "run-1",
		StartedAt:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Source:         "chat.csv",
		MessageCount:   10,
		DealCount:      2,
		RejectionCount: 1,
	}})

	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "chat.csv")
	assert.Contains(t, RenderRuns(nil), "No runs recorded.")
}

func TestRenderSummaryAndRows(t *testing.T) {
	p, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), chat.NewBuilder(t).WithFixture(chat.FixtureSimpleDeal).Build())
	require.NoError(t, err)

	summary := RenderSummary(res.Stats)
	assert.Contains(t, summary, "Run summary")
	assert.Contains(t, summary, "Deals:")

	rows := RenderRows(res.Table, nil)
	assert.Contains(t, rows, "START")
	assert.Contains(t, rows, "R→")

	onlyNoise := RenderRows(res.Table, map[model.Intent]bool{model.IntentNoise: true})
	assert.NotContains(t, onlyNoise, "START")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "chị …", truncate("chị Hoa ơi", 5))
}

func TestProgressObserver(t *testing.T) {
	var buf bytes.Buffer
	obs := NewProgressObserver(&buf)

	for _, stage := range engine.Stages {
		obs.StageStarted(stage, 3)
		obs.StageFinished(stage, time.Millisecond)
	}

	assert.Equal(t, len(engine.Stages), obs.Completed())
	assert.NotEmpty(t, buf.String())
}

func TestProgressObserver_FinishWithoutStart(t *testing.T) {
	obs := NewProgressObserver(&bytes.Buffer{})
	obs.StageFinished(engine.StageClassify, 0)
	assert.Equal(t, 1, obs.Completed())
}
