// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/dealflow/internal/model"
)

var (
	// PrimaryColor is the main theme color (ledger blue).
	PrimaryColor = lipgloss.Color("#5DA9E9")
	// SuccessColor marks deals and completed operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor marks rejections and interruptions.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor marks failures.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor marks opening quotes and notices.
	InfoColor = lipgloss.Color("#95E1D3")
	// SubtleColor is used for borders, noise rows and secondary text.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoxStyle frames the run summary and migration status.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle formats header cells of deal, run and message tables.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(PrimaryColor).
				Padding(0, 1)

	// TableCellStyle formats body cells.
	TableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	// SelectedStyle highlights the cursor row of the message browser.
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1B1B1B")).
			Background(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	DealIcon    = "💱"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
)

// intentStyle colors an intent label: quotes in info, replies in warning,
// confirmations in success, noise subdued.
func intentStyle(intent model.Intent) lipgloss.Style {
	switch intent {
	case model.IntentStart:
		return InfoStyle
	case model.IntentReply:
		return WarningStyle
	case model.IntentConfirm:
		return SuccessStyle
	}
	return SubtleStyle
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the deal icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(DealIcon + " " + title)
}

// RenderBox renders content under a title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
