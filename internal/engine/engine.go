// Package engine runs the deal reconstruction pipeline over a batch of chat messages.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Veraticus/dealflow/internal/assembly"
	"github.com/Veraticus/dealflow/internal/classification"
	"github.com/Veraticus/dealflow/internal/extraction"
	"github.com/Veraticus/dealflow/internal/matching"
	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/normalize"
)

// Stage names a pipeline step.
type Stage string

// Pipeline stages in execution order.
const (
	StageClassify Stage = "classify"
	StageExtract  Stage = "extract"
	StageWindows  Stage = "windows"
	StageReplies  Stage = "replies"
	StageConfirms Stage = "confirms"
	StageAssemble Stage = "assemble"
)

// Stages lists all stages in execution order.
var Stages = []Stage{StageClassify, StageExtract, StageWindows, StageReplies, StageConfirms, StageAssemble}

// Config holds configuration options for the pipeline.
type Config struct {
	Rules         classification.RuleSet
	Policy        assembly.Policy
	ExtraNames    []string // Traders known to the roster beyond those who speak in the batch
	ReplyWindow   time.Duration
	ConfirmWindow time.Duration
	Workers       int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Rules:         classification.DefaultRules(),
		Policy:        assembly.DefaultPolicy(),
		ReplyWindow:   matching.DefaultReplyWindow,
		ConfirmWindow: matching.DefaultConfirmWindow,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithObserver reports stage progress to o.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithStageFactory replaces the rule-based classifier and extractor.
func WithStageFactory(f StageFactory) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.stages = f
		}
	}
}

// Pipeline orchestrates the stages over one batch at a time.
type Pipeline struct {
	stages    StageFactory
	replies   ReplyLinker
	confirms  ConfirmLinker
	assembler DealAssembler
	observer  Observer
	config    Config
}

// New creates a pipeline with the given configuration.
func New(config Config, opts ...Option) (*Pipeline, error) {
	assembler, err := assembly.New(config.Policy)
	if err != nil {
		return nil, fmt.Errorf("invalid assembly policy: %w", err)
	}

	p := &Pipeline{
		config:    config,
		replies:   matching.NewReplyMatcher(config.ReplyWindow, config.Workers),
		confirms:  matching.NewConfirmMatcher(config.ConfirmWindow),
		assembler: assembler,
		observer:  nopObserver{},
	}
	p.stages = p.ruleStages
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) ruleStages(roster *normalize.Roster) (IntentClassifier, EntityExtractor, error) {
	classifier, err := classification.NewClassifier(p.config.Rules, roster)
	if err != nil {
		return nil, nil, err
	}
	rules := p.config.Rules
	extractor, err := extraction.NewWithKeywords(roster, extraction.Keywords{
		Confirm:     rules.ConfirmKeywords,
		Reject:      rules.RejectKeywords,
		Acknowledge: rules.AckKeywords,
	})
	if err != nil {
		return nil, nil, err
	}
	return classifier, extractor, nil
}

// Result is the outcome of one pipeline run.
type Result struct {
	StartedAt  time.Time
	Table      Table
	Deals      []model.Deal
	Rejections []model.Rejection
	Stats      Stats
}

// Roster builds the trader roster for a batch: every trader who speaks in it
// plus the configured extra names.
func (p *Pipeline) Roster(msgs []model.Message) *normalize.Roster {
	names := make([]string, 0, len(msgs)+len(p.config.ExtraNames))
	for _, msg := range msgs {
		names = append(names, msg.TraderName)
	}
	names = append(names, p.config.ExtraNames...)
	return normalize.NewRoster(names...)
}

// Run executes every stage over msgs. Malformed input or cancellation fails the
// whole run; per-START failures become rejections.
func (p *Pipeline) Run(ctx context.Context, msgs []model.Message) (*Result, error) {
	if err := ValidateMessages(msgs); err != nil {
		return nil, err
	}

	started := time.Now()
	slog.Info("Starting pipeline", "messages", len(msgs), "ruleset", p.config.Rules.Name)

	roster := p.Roster(msgs)
	classifier, extractor, err := p.stages(roster)
	if err != nil {
		return nil, fmt.Errorf("failed to build stages: %w", err)
	}

	stats := newStats()
	table := NewTable(msgs)

	err = p.stage(ctx, StageClassify, len(msgs), &stats, func() error {
		col, err := classifier.ClassifyAll(ctx, msgs)
		if err != nil {
			return err
		}
		table, err = table.WithClassifications(col)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageExtract, len(msgs), &stats, func() error {
		col, err := extractor.ExtractAll(ctx, msgs, table.Classifications())
		if err != nil {
			return err
		}
		table, err = table.WithEntities(col)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageWindows, len(msgs), &stats, func() error {
		var err error
		table, err = table.WithWindows(matching.BuildWindows(msgs, table.Classifications()))
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageReplies, len(msgs), &stats, func() error {
		a, err := p.replies.Match(ctx, table.matchingInput())
		if err != nil {
			return err
		}
		table, err = table.WithReplies(a)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, StageConfirms, len(msgs), &stats, func() error {
		a, err := p.confirms.Match(ctx, table.matchingInput(), table.Replies())
		if err != nil {
			return err
		}
		table, err = table.WithConfirms(a)
		return err
	})
	if err != nil {
		return nil, err
	}

	var (
		deals      []model.Deal
		rejections []model.Rejection
	)
	err = p.stage(ctx, StageAssemble, len(msgs), &stats, func() error {
		var err error
		deals, rejections, err = p.assemble(table)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats.collect(table, deals, rejections)
	stats.Duration = time.Since(started)

	slog.Info("Pipeline complete",
		"messages", stats.Messages,
		"starts", stats.Starts,
		"replied", stats.Replied,
		"confirmed", stats.Confirmed,
		"deals", stats.Deals,
		"rejections", stats.Rejections,
		"duration", stats.Duration)

	return &Result{
		StartedAt:  started,
		Table:      table,
		Deals:      deals,
		Rejections: rejections,
		Stats:      stats,
	}, nil
}

func (p *Pipeline) stage(ctx context.Context, stage Stage, rows int, stats *Stats, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pipeline canceled before %s: %w", stage, err)
	}

	p.observer.StageStarted(stage, rows)
	begin := time.Now()
	if err := fn(); err != nil {
		return fmt.Errorf("%s stage failed: %w", stage, err)
	}
	elapsed := time.Since(begin)
	p.observer.StageFinished(stage, elapsed)

	stats.StageDurations[stage] = elapsed
	slog.Debug("Stage complete", "stage", stage, "duration", elapsed)
	return nil
}

// assemble walks STARTs in row order and records exactly one outcome for each:
// a deal or a rejection.
func (p *Pipeline) assemble(table Table) ([]model.Deal, []model.Rejection, error) {
	var (
		deals      []model.Deal
		rejections []model.Rejection
	)
	msgs := table.Messages()
	entities := table.Entities()
	replies := table.Replies()
	confirms := table.Confirms()

	for s, w := range table.Windows() {
		if !w.Valid() {
			continue
		}
		if !replies.Matched(s) {
			rejections = append(rejections, model.Rejection{
				StartIndex: s, Stage: model.StageReplyMatching, Reason: model.ReasonReplyNotFound,
			})
			continue
		}
		if !confirms.Matched(s) {
			rejections = append(rejections, model.Rejection{
				StartIndex: s, Stage: model.StageConfirmMatching, Reason: model.ReasonConfirmNotFound,
			})
			continue
		}

		r, c := replies.Matches[s].Index, confirms.Matches[s].Index
		if status := entities[c].Confirm.Status; status != model.StatusConfirmed {
			rejections = append(rejections, model.Rejection{
				StartIndex: s, Stage: model.StageConfirmMatching, Reason: model.ConfirmStatusReason(status),
			})
			continue
		}

		deal, err := p.assembler.Assemble(assembly.Candidate{
			Start:        msgs[s],
			Reply:        msgs[r],
			Confirm:      msgs[c],
			StartData:    entities[s],
			ReplyData:    entities[r],
			ConfirmData:  entities[c],
			StartIndex:   s,
			ReplyIndex:   r,
			ConfirmIndex: c,
		})
		var verr *assembly.ValidationError
		switch {
		case errors.As(err, &verr):
			rejections = append(rejections, model.Rejection{
				StartIndex: s, Stage: model.StageAssembly, Reason: verr.Reason,
			})
		case err != nil:
			return nil, nil, fmt.Errorf("failed to assemble START %d: %w", s, err)
		default:
			deals = append(deals, deal)
		}
	}
	return deals, rejections, nil
}
