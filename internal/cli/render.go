package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/dealflow/internal/engine"
	"github.com/Veraticus/dealflow/internal/model"
)

const maxTextWidth = 48

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderSummary renders run statistics in a box.
func RenderSummary(stats engine.Stats) string {
	lines := []string{
		fmt.Sprintf("Messages:    %d", stats.Messages),
		fmt.Sprintf("Intents:     %d START, %d REPLY, %d CONFIRM, %d NOISE",
			stats.IntentCounts[model.IntentStart],
			stats.IntentCounts[model.IntentReply],
			stats.IntentCounts[model.IntentConfirm],
			stats.IntentCounts[model.IntentNoise]),
		fmt.Sprintf("Replied:     %d (%.1f%%), avg gap %s", stats.Replied, stats.ReplyRate()*100, stats.AvgReplyGap),
		fmt.Sprintf("Confirmed:   %d (%.1f%%)", stats.Confirmed, stats.ConfirmRate()*100),
		SuccessStyle.Render(fmt.Sprintf("Deals:       %d (%.1f%% of quotes)", stats.Deals, stats.DealRate()*100)),
		WarningStyle.Render(fmt.Sprintf("Rejections:  %d", stats.Rejections)),
	}

	if len(stats.RejectionReasons) > 0 {
		reasons := make([]string, 0, len(stats.RejectionReasons))
		for reason := range stats.RejectionReasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			lines = append(lines, SubtleStyle.Render(fmt.Sprintf("  %-22s %d", reason, stats.RejectionReasons[reason])))
		}
	}

	lines = append(lines, SubtleStyle.Render(fmt.Sprintf("Duration:    %s", stats.Duration)))
	return RenderBox(ChartIcon+" Run summary", strings.Join(lines, "\n"))
}

// RenderDeals renders deals as a table.
func RenderDeals(deals []model.Deal) string {
	if len(deals) == 0 {
		return SubtleStyle.Render("No deals.")
	}
	t := newTable("#", "Date", "Time", "Buy", "Sell", "Amount", "Price", "Actual")
	for _, d := range deals {
		t.Row(
			fmt.Sprintf("%d", d.StartIndex),
			d.Date,
			d.Time,
			d.BuyBank,
			d.SellBank,
			d.Amount.String(),
			fmt.Sprintf("%02d", d.Price),
			d.ActualPrice.String(),
		)
	}
	return t.String()
}

// RenderRejections renders rejections as a table. msgs, when given, adds the
// quote text of each START.
func RenderRejections(rejections []model.Rejection, msgs []model.Message) string {
	if len(rejections) == 0 {
		return SubtleStyle.Render("No rejections.")
	}
	t := newTable("#", "Stage", "Reason", "Quote")
	for _, r := range rejections {
		quote := ""
		if r.StartIndex >= 0 && r.StartIndex < len(msgs) {
			m := msgs[r.StartIndex]
			quote = truncate(m.TraderName+": "+m.Text, maxTextWidth)
		}
		t.Row(fmt.Sprintf("%d", r.StartIndex), string(r.Stage), r.Reason, quote)
	}
	return t.String()
}

// RenderRuns renders persisted runs as a table.
func RenderRuns(runs []model.Run) string {
	if len(runs) == 0 {
		return SubtleStyle.Render("No runs recorded.")
	}
	t := newTable("ID", "Started", "Source", "Messages", "Deals", "Rejections")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.Source, 32),
			fmt.Sprintf("%d", r.MessageCount),
			fmt.Sprintf("%d", r.DealCount),
			fmt.Sprintf("%d", r.RejectionCount),
		)
	}
	return t.String()
}

// RenderRows renders the intermediate per-message view of a pipeline table.
func RenderRows(tbl engine.Table, onlyIntents map[model.Intent]bool) string {
	t := newTable("#", "Time", "Trader", "Intent", "Conf", "Name", "Link", "Signals", "Text")
	shown := 0
	for i := 0; i < tbl.Len(); i++ {
		row := tbl.Row(i)
		if len(onlyIntents) > 0 && !onlyIntents[row.Classification.Intent] {
			continue
		}
		shown++
		t.Row(
			fmt.Sprintf("%d", row.Index),
			row.Message.Clock(),
			truncate(row.Message.TraderName, 20),
			intentStyle(row.Classification.Intent).Render(string(row.Classification.Intent)),
			fmt.Sprintf("%.1f", row.Classification.Confidence),
			row.Classification.MentionedName,
			link(row),
			strings.Join(append(append([]string{}, row.Classification.Signals...), row.Entities.Problems...), ","),
			truncate(row.Message.Text, maxTextWidth),
		)
	}
	if shown == 0 {
		return SubtleStyle.Render("No matching messages.")
	}
	return t.String()
}

func link(row engine.Row) string {
	var parts []string
	if row.Reply.Index != model.NoIndex {
		parts = append(parts, fmt.Sprintf("R→%d", row.Reply.Index))
	}
	if row.Confirm.Index != model.NoIndex {
		parts = append(parts, fmt.Sprintf("C→%d", row.Confirm.Index))
	}
	if row.OwnerStart != model.NoIndex {
		parts = append(parts, fmt.Sprintf("S←%d", row.OwnerStart))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
