package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/dealflow/internal/engine"
)

// ProgressObserver renders pipeline stages as a progress bar.
type ProgressObserver struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	done   int
}

// NewProgressObserver creates an observer writing to writer (stderr when nil).
func NewProgressObserver(writer io.Writer) *ProgressObserver {
	if writer == nil {
		writer = os.Stderr
	}
	return &ProgressObserver{writer: writer}
}

// StageStarted implements engine.Observer.
func (p *ProgressObserver) StageStarted(stage engine.Stage, rows int) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(len(engine.Stages),
			progressbar.OptionSetWriter(p.writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(p.writer); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset] %d rows", stage, rows))
}

// StageFinished implements engine.Observer.
func (p *ProgressObserver) StageFinished(stage engine.Stage, _ time.Duration) {
	p.done++
	if p.bar == nil {
		return
	}
	if err := p.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "stage", stage, "error", err)
	}
}

// Completed returns the number of finished stages.
func (p *ProgressObserver) Completed() int {
	return p.done
}
