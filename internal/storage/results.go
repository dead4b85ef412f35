package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/dealflow/internal/model"
)

// GetIntents returns a run's per-message classifications in message order.
func (s *SQLiteStorage) GetIntents(ctx context.Context, runID string) ([]model.IntentRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, message_index, message_hash, intent, confidence, mentioned_name
		FROM message_intents
		WHERE run_id = ?
		ORDER BY message_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query intents: %w", err)
	}
	defer closeRows(rows.Close)

	var intents []model.IntentRecord
	for rows.Next() {
		var (
			rec    model.IntentRecord
			intent string
		)
		if err := rows.Scan(&rec.RunID, &rec.Index, &rec.MessageHash, &intent,
			&rec.Confidence, &rec.MentionedName); err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		rec.Intent = model.Intent(intent)
		intents = append(intents, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating intents: %w", err)
	}
	return intents, nil
}

// GetDeals returns a run's deals in START order.
func (s *SQLiteStorage) GetDeals(ctx context.Context, runID string) ([]model.Deal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT start_index, reply_index, confirm_index, deal_date, deal_time,
		       buy_bank, sell_bank, amount, price, actual_price
		FROM deals
		WHERE run_id = ?
		ORDER BY start_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}
	defer closeRows(rows.Close)

	var deals []model.Deal
	for rows.Next() {
		var (
			d              model.Deal
			amount, actual string
		)
		if err := rows.Scan(&d.StartIndex, &d.ReplyIndex, &d.ConfirmIndex, &d.Date, &d.Time,
			&d.BuyBank, &d.SellBank, &amount, &d.Price, &actual); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		if d.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid amount %q for deal %d: %w", amount, d.StartIndex, err)
		}
		if d.ActualPrice, err = decimal.NewFromString(actual); err != nil {
			return nil, fmt.Errorf("invalid actual price %q for deal %d: %w", actual, d.StartIndex, err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}
	return deals, nil
}

// GetRejections returns a run's rejections in START order.
func (s *SQLiteStorage) GetRejections(ctx context.Context, runID string) ([]model.Rejection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(runID, "runID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT start_index, stage, reason
		FROM rejections
		WHERE run_id = ?
		ORDER BY start_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rejections: %w", err)
	}
	defer closeRows(rows.Close)

	var rejections []model.Rejection
	for rows.Next() {
		var (
			r     model.Rejection
			stage string
		)
		if err := rows.Scan(&r.StartIndex, &stage, &r.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan rejection: %w", err)
		}
		r.Stage = model.RejectionStage(stage)
		rejections = append(rejections, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejections: %w", err)
	}
	return rejections, nil
}

func closeRows(closeFn func() error) {
	if err := closeFn(); err != nil {
		slog.Warn("Failed to close rows", "error", err)
	}
}
