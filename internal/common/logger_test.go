package common

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		contains []string
	}{
		{
			name:     "console shortens time and durations",
			format:   "console",
			contains: []string{"msg=\"Stage finished\"", "elapsed=1.5ms", "rows=12"},
		},
		{
			name:     "unknown format falls back to console",
			format:   "",
			contains: []string{"elapsed=1.5ms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, slog.LevelInfo, tt.format)
			logger.Info("Stage finished", "elapsed", 1500*time.Microsecond+200*time.Nanosecond, "rows", 12)

			line := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, line, want)
			}
			timeField := line[:bytes.IndexByte(buf.Bytes(), ' ')]
			assert.Regexp(t, `^time=\d{2}:\d{2}:\d{2}\.\d{3}$`, timeField)
		})
	}
}

func TestNewLogger_JSONKeepsTimestamps(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, slog.LevelInfo, "json").Info("Run recorded", "run_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Run recorded", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])

	ts, ok := entry["time"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn, "console")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
