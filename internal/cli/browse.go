package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Veraticus/dealflow/internal/engine"
	"github.com/Veraticus/dealflow/internal/model"
)

// Fixed column widths of the browser; the text column takes the rest.
const (
	browserFixedWidth = 5 + 8 + 6 + 16 + 8 + 4 + 12 + 14
	browserMinText    = 20
	browserChrome     = 4 // title, help and table header lines
	browserDetail     = 8
)

var browserIntents = []model.Intent{model.IntentStart, model.IntentReply, model.IntentConfirm, model.IntentNoise}

type browserKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Detail key.Binding
	Quit   key.Binding
}

func defaultBrowserKeys() browserKeys {
	return browserKeys{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next intent"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous intent"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Detail, k.Quit}
}

// browserView is one selectable intent filter; an empty set shows every row.
type browserView struct {
	only  map[model.Intent]bool
	label string
}

// Browser is an interactive, scrollable view of a classified message table.
type Browser struct {
	source engine.Table
	views  []browserView
	rows   []int // Table row to message index
	keys   browserKeys
	help   help.Model
	table  table.Model
	view   int
	width  int
	height int
	detail bool
}

// NewBrowser creates a browser over tbl. The first view applies only; tab cycles
// through single-intent views.
func NewBrowser(tbl engine.Table, only map[model.Intent]bool) Browser {
	views := []browserView{{only: only, label: filterLabel(only)}}
	for _, intent := range browserIntents {
		views = append(views, browserView{
			only:  map[model.Intent]bool{intent: true},
			label: string(intent),
		})
	}

	t := table.New(table.WithFocused(true))
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(SubtleColor).
		BorderBottom(true)
	s.Cell = TableCellStyle
	s.Selected = SelectedStyle
	t.SetStyles(s)

	b := Browser{
		source: tbl,
		views:  views,
		keys:   defaultBrowserKeys(),
		help:   help.New(),
		table:  t,
		width:  120,
		height: 30,
	}
	b.resize()
	b.applyView()
	return b
}

func filterLabel(only map[model.Intent]bool) string {
	var names []string
	for _, intent := range browserIntents {
		if only[intent] {
			names = append(names, string(intent))
		}
	}
	if len(names) == 0 {
		return "ALL"
	}
	return strings.Join(names, ",")
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Next):
			b.view = (b.view + 1) % len(b.views)
			b.applyView()
			return b, nil
		case key.Matches(msg, b.keys.Prev):
			b.view = (b.view + len(b.views) - 1) % len(b.views)
			b.applyView()
			return b, nil
		case key.Matches(msg, b.keys.Detail):
			b.detail = !b.detail
			b.resize()
			return b, nil
		}
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.resize()
		return b, nil
	}

	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

// View implements tea.Model.
func (b Browser) View() string {
	title := TitleStyle.UnsetMargins().Render(fmt.Sprintf("%s Messages: %s (%d of %d)",
		DealIcon, b.views[b.view].label, len(b.rows), b.source.Len()))

	parts := []string{title, b.table.View()}
	if b.detail {
		parts = append(parts, b.detailView())
	}
	parts = append(parts, b.help.ShortHelpView(b.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Selected returns the message index under the cursor.
func (b Browser) Selected() (int, bool) {
	c := b.table.Cursor()
	if c < 0 || c >= len(b.rows) {
		return 0, false
	}
	return b.rows[c], true
}

func (b *Browser) applyView() {
	only := b.views[b.view].only
	b.rows = make([]int, 0, b.source.Len())
	rows := make([]table.Row, 0, b.source.Len())
	for i := 0; i < b.source.Len(); i++ {
		row := b.source.Row(i)
		if len(only) > 0 && !only[row.Classification.Intent] {
			continue
		}
		b.rows = append(b.rows, i)
		rows = append(rows, table.Row{
			strconv.Itoa(row.Index),
			row.Message.Clock(),
			row.Message.Bank,
			row.Message.TraderName,
			string(row.Classification.Intent),
			fmt.Sprintf("%.1f", row.Classification.Confidence),
			row.Classification.MentionedName,
			link(row),
			row.Message.Text,
		})
	}
	b.table.SetRows(rows)
	b.table.GotoTop()
}

func (b *Browser) resize() {
	text := b.width - browserFixedWidth - 2*9
	if text < browserMinText {
		text = browserMinText
	}
	b.table.SetColumns([]table.Column{
		{Title: "#", Width: 5},
		{Title: "Time", Width: 8},
		{Title: "Bank", Width: 6},
		{Title: "Trader", Width: 16},
		{Title: "Intent", Width: 8},
		{Title: "Conf", Width: 4},
		{Title: "Name", Width: 12},
		{Title: "Link", Width: 14},
		{Title: "Text", Width: text},
	})

	height := b.height - browserChrome
	if b.detail {
		height -= browserDetail
	}
	if height < 3 {
		height = 3
	}
	b.table.SetHeight(height)
	b.help.Width = b.width
}

func (b Browser) detailView() string {
	i, ok := b.Selected()
	if !ok {
		return BoxStyle.Render(SubtleStyle.Render("No message selected."))
	}
	row := b.source.Row(i)

	lines := []string{
		fmt.Sprintf("%s %s  %s (%s)", row.Message.DateKey(), row.Message.Clock(), row.Message.TraderName, row.Message.Bank),
		row.Message.Text,
		intentStyle(row.Classification.Intent).Render(fmt.Sprintf("%s %.1f", row.Classification.Intent, row.Classification.Confidence)) +
			"  " + describeEntities(row.Entities),
	}
	if row.Window.Valid() && row.Classification.Intent == model.IntentStart {
		lines = append(lines, fmt.Sprintf("window %d..%d  %s", row.Window.Start, row.Window.End, link(row)))
	}
	if notes := append(append([]string{}, row.Classification.Signals...), row.Entities.Problems...); len(notes) > 0 {
		lines = append(lines, SubtleStyle.Render(strings.Join(notes, ", ")))
	}
	return BoxStyle.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

func describeEntities(e model.Entities) string {
	switch {
	case e.Start != nil:
		s := e.Start
		out := fmt.Sprintf("side=%s price=%s volume=%s", s.Side, optInt(s.Price), optFloat(s.Volume))
		if s.Bid != nil && s.Ask != nil {
			out += fmt.Sprintf(" spread=%02d/%02d", *s.Bid, *s.Ask)
		}
		if s.RawPrice != nil {
			out += " raw=" + optFloat(s.RawPrice)
		}
		return out
	case e.Reply != nil:
		return fmt.Sprintf("action=%s target=%q volume=%s", e.Reply.Action, e.Reply.TargetTrader, optFloat(e.Reply.Volume))
	case e.Confirm != nil:
		return fmt.Sprintf("status=%s counterparty=%q volume=%s", e.Confirm.Status, e.Confirm.Counterparty, optFloat(e.Confirm.Volume))
	}
	return ""
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%02d", *v)
}

func optFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Interactive reports whether both in and out are terminals.
func Interactive(in io.Reader, out io.Writer) bool {
	return isTerminal(in) && isTerminal(out)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Browse runs b full screen until the user quits or ctx is canceled.
func Browse(ctx context.Context, b Browser, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(b,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run message browser: %w", err)
	}
	return nil
}
