package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidRun       = errors.New("invalid run")
	ErrInvalidIntent    = errors.New("invalid intent record")
	ErrInvalidDeal      = errors.New("invalid deal")
	ErrInvalidRejection = errors.New("invalid rejection")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRunRecord validates a run and everything attached to it.
func validateRunRecord(record service.RunRecord) error {
	if record.Run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if err := validateRun(record.Run); err != nil {
		return err
	}
	for i := range record.Intents {
		if err := validateIntent(&record.Intents[i]); err != nil {
			return fmt.Errorf("intent at index %d: %w", i, err)
		}
	}
	for i := range record.Deals {
		if err := validateDeal(&record.Deals[i]); err != nil {
			return fmt.Errorf("deal at index %d: %w", i, err)
		}
	}
	for i := range record.Rejections {
		if err := validateRejection(&record.Rejections[i]); err != nil {
			return fmt.Errorf("rejection at index %d: %w", i, err)
		}
	}
	return nil
}

func validateRun(run *model.Run) error {
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.MessageCount < 0 || run.DealCount < 0 || run.RejectionCount < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidRun)
	}
	return nil
}

func validateIntent(rec *model.IntentRecord) error {
	if !rec.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidIntent, rec.Intent)
	}
	if rec.Index < 0 {
		return fmt.Errorf("%w: negative index", ErrInvalidIntent)
	}
	if rec.Confidence < 0 || rec.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidIntent)
	}
	return nil
}

func validateDeal(deal *model.Deal) error {
	if strings.TrimSpace(deal.BuyBank) == "" || strings.TrimSpace(deal.SellBank) == "" {
		return fmt.Errorf("%w: missing bank", ErrInvalidDeal)
	}
	if deal.BuyBank == deal.SellBank {
		return fmt.Errorf("%w: buy and sell bank are both %s", ErrInvalidDeal, deal.BuyBank)
	}
	if deal.Price < 0 || deal.Price > 99 {
		return fmt.Errorf("%w: price %d out of range", ErrInvalidDeal, deal.Price)
	}
	if !deal.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDeal)
	}
	return nil
}

func validateRejection(rej *model.Rejection) error {
	switch rej.Stage {
	case model.StageReplyMatching, model.StageConfirmMatching, model.StageAssembly:
	default:
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidRejection, rej.Stage)
	}
	if strings.TrimSpace(rej.Reason) == "" {
		return fmt.Errorf("%w: missing reason", ErrInvalidRejection)
	}
	return nil
}
