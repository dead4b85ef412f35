package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/config"
	"github.com/Veraticus/dealflow/internal/engine"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
	"github.com/Veraticus/dealflow/internal/storage"
)

// pipelineFlags maps per-command pipeline flags to configuration keys.
var pipelineFlags = map[string]string{
	"workers":       config.KeyWorkers,
	"ruleset":       config.KeyRuleSet,
	"market-offset": config.KeyMarketOffset,
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "Parallel reply-matching workers (0 = all CPUs)")
	cmd.Flags().String("ruleset", "", "Classification rule set (universal, strict)")
	cmd.Flags().Int64("market-offset", 0, "Offset added to the two-digit price to form the actual rate")
}

// loadPipeline resolves configuration, with the command's flags applied, into a pipeline.
func loadPipeline(cmd *cobra.Command, opts ...engine.Option) (*engine.Pipeline, error) {
	overrideFromFlags(cmd, pipelineFlags)

	cfg, err := config.LoadPipelineConfig()
	if err != nil {
		return nil, common.NewUserError("Invalid pipeline configuration", err)
	}

	p, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, common.NewUserError("Invalid pipeline configuration", err)
	}
	return p, nil
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStorage(store)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "Failed to close database", nil)
	}
}

// resolveRun returns the run named by id, or the latest run when id is empty.
func resolveRun(ctx context.Context, store service.Storage, id string) (*model.Run, error) {
	var (
		run *model.Run
		err error
	)
	if id == "" {
		run, err = store.GetLatestRun(ctx)
	} else {
		run, err = store.GetRun(ctx, id)
	}
	if errors.Is(err, common.ErrNotFound) {
		if id == "" {
			return nil, common.NewUserError("No runs recorded yet; run 'dealflow extract <file>' first", err)
		}
		return nil, common.NewUserError(fmt.Sprintf("Run %s not found", id), err)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolved run", "run_id", run.ID, "started_at", run.StartedAt)
	return run, nil
}
