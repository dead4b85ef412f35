// Package chatlog reads the uniform message table the pipeline consumes.
package chatlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/dealflow/internal/common"
	"github.com/Veraticus/dealflow/internal/model"
)

// Column names of the message table.
const (
	ColumnDate   = "date"
	ColumnTime   = "time"
	ColumnBank   = "bank"
	ColumnTrader = "trader_name"
	ColumnText   = "text"
)

// aliases maps accepted header spellings (lower-cased) to canonical columns.
var aliases = map[string]string{
	"date":        ColumnDate,
	"time":        ColumnTime,
	"bank":        ColumnBank,
	"bank_name":   ColumnBank,
	"trader":      ColumnTrader,
	"trader_name": ColumnTrader,
	"text":        ColumnText,
	"mess":        ColumnText,
	"message":     ColumnText,
}

var required = []string{ColumnDate, ColumnTime, ColumnBank, ColumnTrader, ColumnText}

var (
	dateLayouts  = []string{"2006-01-02", "02/01/2006", "2006/01/02"}
	clockLayouts = []string{"15:04:05", "15:04"}
)

// ErrMissingColumn indicates the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// ReadFile reads a message table from a CSV file.
func ReadFile(path string) ([]model.Message, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close chat log", "path", path, "error", cerr)
		}
	}()

	msgs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return msgs, nil
}

// Read parses a CSV message table. Rows keep file order; nothing is cleaned,
// deduplicated or remapped.
func Read(r io.Reader) ([]model.Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var msgs []model.Message
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidMessage, err)
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)

		msg, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", common.ErrInvalidMessage, line, err)
		}
		msgs = append(msgs, msg)
	}

	slog.Debug("Read chat log", "rows", len(msgs))
	return msgs, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(required))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[key]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return columns, nil
}

func parseRecord(record []string, columns map[string]int) (model.Message, error) {
	raw := func(col string) string {
		i := columns[col]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}
	field := func(col string) string {
		return strings.TrimSpace(raw(col))
	}

	ts, err := parseTimestamp(field(ColumnDate), field(ColumnTime))
	if err != nil {
		return model.Message{}, err
	}

	return model.Message{
		Timestamp:  ts,
		Bank:       field(ColumnBank),
		TraderName: field(ColumnTrader),
		Text:       raw(ColumnText),
	}, nil
}

func parseTimestamp(date, clock string) (time.Time, error) {
	day, err := parseAny(date, dateLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	tod, err := parseAny(clock, clockLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
}

func parseAny(value string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
