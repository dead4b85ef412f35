package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

var testStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testRecord(started time.Time) service.RunRecord {
	return service.RunRecord{
		Run: &model.Run{
			StartedAt:      started,
			Source:         "chat.csv",
			MessageCount:   4,
			DealCount:      1,
			RejectionCount: 1,
			IntentCounts: map[model.Intent]int{
				model.IntentStart:   2,
				model.IntentReply:   1,
				model.IntentConfirm: 1,
			},
		},
		Intents: []model.IntentRecord{
			{Index: 0, MessageHash: "h0", Intent: model.IntentStart, Confidence: 0.9},
			{Index: 1, MessageHash: "h1", Intent: model.IntentReply, Confidence: 0.8, MentionedName: "toan"},
			{Index: 2, MessageHash: "h2", Intent: model.IntentConfirm, Confidence: 0.9},
			{Index: 3, MessageHash: "h3", Intent: model.IntentStart, Confidence: 0.7},
		},
		Deals: []model.Deal{{
			StartIndex:   0,
			ReplyIndex:   1,
			ConfirmIndex: 2,
			Date:         "2024-03-01",
			Time:         "09:15:30",
			BuyBank:      "VCB",
			SellBank:     "TCB",
			Amount:       decimal.RequireFromString("2.5"),
			Price:        25,
			ActualPrice:  decimal.NewFromInt(25325),
		}},
		Rejections: []model.Rejection{
			{StartIndex: 3, Stage: model.StageReplyMatching, Reason: model.ReasonReplyNotFound},
		},
	}
}

func TestSQLiteStorage_SaveRunRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	record := testRecord(started)
	require.NoError(t, store.SaveRun(ctx, record))
	require.NotEmpty(t, record.Run.ID, "SaveRun assigns an ID")

	run, err := store.GetRun(ctx, record.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, "chat.csv", run.Source)
	assert.True(t, started.Equal(run.StartedAt), "started_at %v", run.StartedAt)
	assert.Equal(t, 4, run.MessageCount)
	assert.Equal(t, 1, run.DealCount)
	assert.Equal(t, 2, run.IntentCounts[model.IntentStart])
	assert.Equal(t, 0, run.IntentCounts[model.IntentNoise])

	intents, err := store.GetIntents(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, intents, 4)
	assert.Equal(t, model.IntentReply, intents[1].Intent)
	assert.Equal(t, "toan", intents[1].MentionedName)
	assert.Equal(t, run.ID, intents[1].RunID)

	deals, err := store.GetDeals(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.True(t, decimal.RequireFromString("2.5").Equal(deals[0].Amount))
	assert.True(t, decimal.NewFromInt(25325).Equal(deals[0].ActualPrice))
	assert.Equal(t, 25, deals[0].Price)
	assert.Equal(t, "VCB", deals[0].BuyBank)

	rejections, err := store.GetRejections(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Rejection{
		{StartIndex: 3, Stage: model.StageReplyMatching, Reason: model.ReasonReplyNotFound},
	}, rejections)
}

func TestSQLiteStorage_SaveRunKeepsExplicitID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	record := testRecord(time.Now())
	record.Run.ID = "fixed-id"
	require.NoError(t, store.SaveRun(ctx, record))

	_, err := store.GetRun(ctx, "fixed-id")
	require.NoError(t, err)

	// Saving the same ID twice is a constraint violation and is not retried.
	err = store.SaveRun(ctx, record)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.NotErrorIs(t, err, common.ErrMaxRetries)
}

func TestSQLiteStorage_SaveRunIsAtomic(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	record := testRecord(time.Now())
	record.Run.ID = "atomic"
	// Duplicate primary key in the deals table fails the whole transaction.
	record.Deals = append(record.Deals, record.Deals[0])
	require.Error(t, store.SaveRun(ctx, record))

	_, err := store.GetRun(ctx, "atomic")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ListRuns(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		record := testRecord(base.Add(time.Duration(i) * time.Hour))
		record.Run.ID = fmt.Sprintf("run-%d", i)
		require.NoError(t, store.SaveRun(ctx, record))
	}

	tests := []struct {
		name   string
		filter service.RunFilter
		want   []string
	}{
		{name: "all newest first", want: []string{"run-2", "run-1", "run-0"}},
		{name: "limit", filter: service.RunFilter{Limit: 1}, want: []string{"run-2"}},
		{
			name:   "since",
			filter: service.RunFilter{Since: timePtr(base.Add(time.Hour))},
			want:   []string{"run-2", "run-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, len(runs))
			for i, r := range runs {
				ids[i] = r.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	latest, err := store.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetRun(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetLatestRun(ctx)
	require.ErrorIs(t, err, common.ErrNotFound)

	deals, err := store.GetDeals(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, deals)
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveRun(ctx, testRecord(time.Now())))

	runs, err := store.ListRuns(ctx, service.RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.ErrorIs(t, err, ErrEmptyString)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		retryable bool
		busy      bool
		duplicate bool
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, retryable: true, busy: true},
		{name: "locked", err: fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrLocked}), retryable: true, busy: true},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, duplicate: true},
		{name: "other", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(tt.err)
			var retryable *common.RetryableError
			require.ErrorAs(t, err, &retryable)
			assert.Equal(t, tt.retryable, retryable.Retryable)
			assert.Equal(t, tt.busy, errors.Is(err, common.ErrDatabaseBusy))
			assert.Equal(t, tt.duplicate, errors.Is(err, common.ErrDuplicateEntry))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classifyError(nil))
}

func TestSQLiteStorage_WithRetry(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	store.retry = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	calls := 0
	err := store.withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = store.withRetry(context.Background(), func() error {
		calls++
		return sqlite3.Error{Code: sqlite3.ErrConstraint}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
