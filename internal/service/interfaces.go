// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/dealflow/internal/model"
)

// RunFilter defines filtering options for run queries.
type RunFilter struct {
	Since *time.Time
	Limit int
}

// RunRecord bundles everything persisted for one pipeline run.
type RunRecord struct {
	Run        *model.Run
	Intents    []model.IntentRecord
	Deals      []model.Deal
	Rejections []model.Rejection
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Run operations
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	GetLatestRun(ctx context.Context) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Result operations
	GetIntents(ctx context.Context, runID string) ([]model.IntentRecord, error)
	GetDeals(ctx context.Context, runID string) ([]model.Deal, error)
	GetRejections(ctx context.Context, runID string) ([]model.Rejection, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
