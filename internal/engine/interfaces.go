package engine

import (
	"context"
	"time"

	"github.com/Veraticus/dealflow/internal/assembly"
	"github.com/Veraticus/dealflow/internal/matching"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/normalize"
)

// IntentClassifier labels every message of a batch.
type IntentClassifier interface {
	ClassifyAll(ctx context.Context, msgs []model.Message) ([]model.Classification, error)
}

// EntityExtractor produces the entities column for a classified batch.
type EntityExtractor interface {
	ExtractAll(ctx context.Context, msgs []model.Message, classes []model.Classification) ([]model.Entities, error)
}

// ReplyLinker assigns REPLY rows to STARTs.
type ReplyLinker interface {
	Match(ctx context.Context, in matching.Input) (matching.Assignment, error)
}

// ConfirmLinker assigns CONFIRM rows to replied STARTs.
type ConfirmLinker interface {
	Match(ctx context.Context, in matching.Input, replies matching.Assignment) (matching.Assignment, error)
}

// DealAssembler validates a matched triple and builds the deal.
type DealAssembler interface {
	Assemble(c assembly.Candidate) (model.Deal, error)
}

// StageFactory builds the roster-bound stages for one batch.
type StageFactory func(roster *normalize.Roster) (IntentClassifier, EntityExtractor, error)

// Observer receives progress notifications as the pipeline advances.
type Observer interface {
	StageStarted(stage Stage, rows int)
	StageFinished(stage Stage, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) StageStarted(Stage, int)            {}
func (nopObserver) StageFinished(Stage, time.Duration) {}
