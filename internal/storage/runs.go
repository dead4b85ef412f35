package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

const runColumns = `id, started_at, source, message_count, deal_count, rejection_count,
	start_count, reply_count, confirm_count, noise_count`

// SaveRun persists a run with its intents, deals and rejections in one
// transaction. A run without an ID is assigned a new one.
func (s *SQLiteStorage) SaveRun(ctx context.Context, record service.RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRunRecord(record); err != nil {
		return err
	}

	if record.Run.ID == "" {
		record.Run.ID = uuid.NewString()
	}

	err := s.withRetry(ctx, func() error {
		return s.saveRunTx(ctx, record)
	})
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", record.Run.ID, err)
	}

	slog.Info("Saved run",
		"run_id", record.Run.ID,
		"intents", len(record.Intents),
		"deals", len(record.Deals),
		"rejections", len(record.Rejections))
	return nil
}

func (s *SQLiteStorage) saveRunTx(ctx context.Context, record service.RunRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := record.Run
	_, err = tx.ExecContext(ctx, `INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.Source,
		run.MessageCount, run.DealCount, run.RejectionCount,
		run.IntentCounts[model.IntentStart], run.IntentCounts[model.IntentReply],
		run.IntentCounts[model.IntentConfirm], run.IntentCounts[model.IntentNoise])
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err = insertIntents(ctx, tx, run.ID, record.Intents); err != nil {
		return err
	}
	if err = insertDeals(ctx, tx, run.ID, record.Deals); err != nil {
		return err
	}
	if err = insertRejections(ctx, tx, run.ID, record.Rejections); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

func insertIntents(ctx context.Context, tx *sql.Tx, runID string, intents []model.IntentRecord) error {
	if len(intents) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO message_intents
		(run_id, message_index, message_hash, intent, confidence, mentioned_name)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare intent insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range intents {
		if _, err := stmt.ExecContext(ctx, runID, rec.Index, rec.MessageHash,
			string(rec.Intent), rec.Confidence, rec.MentionedName); err != nil {
			return fmt.Errorf("failed to insert intent %d: %w", rec.Index, err)
		}
	}
	return nil
}

func insertDeals(ctx context.Context, tx *sql.Tx, runID string, deals []model.Deal) error {
	if len(deals) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO deals
		(run_id, start_index, reply_index, confirm_index, deal_date, deal_time,
		 buy_bank, sell_bank, amount, price, actual_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare deal insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, d := range deals {
		if _, err := stmt.ExecContext(ctx, runID, d.StartIndex, d.ReplyIndex, d.ConfirmIndex,
			d.Date, d.Time, d.BuyBank, d.SellBank,
			d.Amount.String(), d.Price, d.ActualPrice.String()); err != nil {
			return fmt.Errorf("failed to insert deal %d: %w", d.StartIndex, err)
		}
	}
	return nil
}

func insertRejections(ctx context.Context, tx *sql.Tx, runID string, rejections []model.Rejection) error {
	if len(rejections) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO rejections
		(run_id, start_index, stage, reason) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare rejection insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rejections {
		if _, err := stmt.ExecContext(ctx, runID, r.StartIndex, string(r.Stage), r.Reason); err != nil {
			return fmt.Errorf("failed to insert rejection %d: %w", r.StartIndex, err)
		}
	}
	return nil
}

// GetRun returns the run with the given ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun returns the most recently started run.
func (s *SQLiteStorage) GetLatestRun(ctx context.Context) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no runs recorded", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, filter service.RunFilter) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if filter.Since != nil {
		query += ` WHERE started_at >= ?`
		args = append(args, filter.Since.UTC())
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer closeRows(rows.Close)

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	var (
		run                                  model.Run
		starts, replies, confirms, noiseRows int
	)
	err := row.Scan(&run.ID, &run.StartedAt, &run.Source,
		&run.MessageCount, &run.DealCount, &run.RejectionCount,
		&starts, &replies, &confirms, &noiseRows)
	if err != nil {
		return nil, err
	}
	run.IntentCounts = map[model.Intent]int{
		model.IntentStart:   starts,
		model.IntentReply:   replies,
		model.IntentConfirm: confirms,
		model.IntentNoise:   noiseRows,
	}
	return &run, nil
}
