package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dealflow/internal/model"
	"github.com/Veraticus/dealflow/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{
			name:      "valid string",
			str:       "test",
			paramName: "param",
			wantErr:   false,
		},
		{
			name:      "empty string",
			str:       "",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			str:       "   ",
			paramName: "param",
			wantErr:   true,
		},
		{
			name:      "string with spaces",
			str:       "  test  ",
			paramName: "param",
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}


func TestValidateRunRecord(t *testing.T) {
	valid := func() service.RunRecord {
		return testRecord(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	}

	tests := []struct {
		wantErr error
		mutate  func(*service.RunRecord)
		name    string
	}{
		{
			name:   "valid record",
			mutate: func(*service.RunRecord) {},
		},
		{
			name:    "nil run",
			mutate:  func(r *service.RunRecord) { r.Run = nil },
			wantErr: ErrNilParameter,
		},
		{
			name:    "missing start time",
			mutate:  func(r *service.RunRecord) { r.Run.StartedAt = time.Time{} },
			wantErr: ErrInvalidRun,
		},
		{
			name:    "negative count",
			mutate:  func(r *service.RunRecord) { r.Run.DealCount = -1 },
			wantErr: ErrInvalidRun,
		},
		{
			name:    "unknown intent",
			mutate:  func(r *service.RunRecord) { r.Intents[0].Intent = "QUOTE" },
			wantErr: ErrInvalidIntent,
		},
		{
			name:    "confidence above one",
			mutate:  func(r *service.RunRecord) { r.Intents[0].Confidence = 1.5 },
			wantErr: ErrInvalidIntent,
		},
		{
			name:    "same bank on both sides",
			mutate:  func(r *service.RunRecord) { r.Deals[0].SellBank = r.Deals[0].BuyBank },
			wantErr: ErrInvalidDeal,
		},
		{
			name:    "price out of range",
			mutate:  func(r *service.RunRecord) { r.Deals[0].Price = 100 },
			wantErr: ErrInvalidDeal,
		},
		{
			name:    "zero amount",
			mutate:  func(r *service.RunRecord) { r.Deals[0].Amount = decimal.Zero },
			wantErr: ErrInvalidDeal,
		},
		{
			name:    "unknown rejection stage",
			mutate:  func(r *service.RunRecord) { r.Rejections[0].Stage = "pricing" },
			wantErr: ErrInvalidRejection,
		},
		{
			name:    "missing rejection reason",
			mutate:  func(r *service.RunRecord) { r.Rejections[0].Reason = " " },
			wantErr: ErrInvalidRejection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(&record)
			err := validateRunRecord(record)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateIntent_AllIntents(t *testing.T) {
	for _, intent := range []model.Intent{model.IntentStart, model.IntentReply, model.IntentConfirm, model.IntentNoise} {
		assert.NoError(t, validateIntent(&model.IntentRecord{Intent: intent, Confidence: 0.5}), intent)
	}
}
