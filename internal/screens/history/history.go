package history

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/export"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/router"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screen"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/components"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/layout"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

const phasePollInterval = 150 * time.Millisecond

type tab int

const (
	tabLocal tab = iota
	tabRemote
)

type remoteLoadedMsg struct {
	Entries []evaluator.HistoryEntry
	Err     error
}

type exportDoneMsg struct {
	Job *export.Job
	Err error
}

type exportPollMsg time.Time

// Deps are the collaborators of the history screen.
type Deps struct {
	Timeline *timeline.Timeline

	// Remote serves the server-side history tab. Nil hides the tab.
	Remote evaluator.HistorySource

	// Exporter runs PDF exports. Nil disables export.
	Exporter *export.Pipeline

	Context context.Context
}

// HistoryScreen shows the conversation so far and runs exports.
type HistoryScreen struct {
	deps Deps
	tab  tab

	remote        []evaluator.HistoryEntry
	remoteLoaded  bool
	remoteLoading bool
	remoteErr     string

	exporting bool
	phase     export.Phase
	notice    string
	noticeErr bool

	scroll int
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen on the local tab.
func New(deps Deps) *HistoryScreen {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	return &HistoryScreen{deps: deps}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.deps.Remote != nil {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Switch view"})
		if s.tab == tabRemote {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Reload"})
		}
	}
	if s.canExport() {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Export PDF"})
	}
	if s.exporting {
		return hints
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case remoteLoadedMsg:
		s.remoteLoading = false
		s.remoteLoaded = true
		if msg.Err != nil {
			s.remoteErr = evaluator.Reason(msg.Err, "Could not load server history")
			return s, nil
		}
		s.remoteErr = ""
		s.remote = msg.Entries
		return s, nil

	case exportPollMsg:
		if !s.exporting {
			return s, nil
		}
		if p := s.deps.Exporter.Phase(); p.Busy() {
			s.phase = p
		}
		return s, pollPhase()

	case exportDoneMsg:
		s.handleExportDone(msg)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			// The result of a running export is shown here, so stay.
			if s.exporting {
				s.notice, s.noticeErr = "Export in progress. Please wait.", false
				return s, nil
			}
			return s, router.Pop()
		case "tab", "left", "right":
			return s, s.switchTab()
		case "r":
			if s.tab == tabRemote {
				return s, s.loadRemote()
			}
		case "e":
			return s, s.exportButton().Press()
		case "up", "k":
			s.scroll++
		case "down", "j":
			if s.scroll > 0 {
				s.scroll--
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) switchTab() tea.Cmd {
	if s.deps.Remote == nil {
		return nil
	}
	s.scroll = 0
	if s.tab == tabRemote {
		s.tab = tabLocal
		return nil
	}
	s.tab = tabRemote
	if !s.remoteLoaded {
		return s.loadRemote()
	}
	return nil
}

func (s *HistoryScreen) loadRemote() tea.Cmd {
	if s.remoteLoading {
		return nil
	}
	s.remoteLoading = true
	ctx, src := s.deps.Context, s.deps.Remote
	return func() tea.Msg {
		entries, err := src.ChatHistory(ctx)
		return remoteLoadedMsg{Entries: entries, Err: err}
	}
}

// canExport reports whether the export action is enabled: a pipeline is
// wired, none is running and there is at least one durable turn.
func (s *HistoryScreen) canExport() bool {
	return s.deps.Exporter != nil && !s.exporting && len(s.deps.Timeline.Durable()) > 0
}

func (s *HistoryScreen) startExport() tea.Cmd {
	if !s.canExport() {
		return nil
	}
	s.exporting = true
	s.phase = export.PhaseSummarizing
	s.notice, s.noticeErr = "", false

	ctx, p := s.deps.Context, s.deps.Exporter
	snapshot := s.deps.Timeline.Snapshot()
	run := func() tea.Msg {
		job, err := p.Run(ctx, snapshot)
		return exportDoneMsg{Job: job, Err: err}
	}
	return tea.Batch(run, pollPhase())
}

func (s *HistoryScreen) handleExportDone(msg exportDoneMsg) {
	s.exporting = false
	s.phase = export.PhaseIdle

	var perr *export.PhaseError
	switch {
	case msg.Err == nil:
		s.notice, s.noticeErr = "PDF saved to "+msg.Job.Path, false
	case errors.As(msg.Err, &perr):
		s.notice, s.noticeErr = perr.UserMessage(), true
	case errors.Is(msg.Err, export.ErrEmptyConversation):
		s.notice, s.noticeErr = "Nothing to export yet.", true
	case errors.Is(msg.Err, export.ErrExportRunning):
		s.notice, s.noticeErr = "An export is already running.", true
	default:
		s.notice, s.noticeErr = fmt.Sprintf("Export failed: %v. Please try again.", msg.Err), true
	}
}

func pollPhase() tea.Cmd {
	return tea.Tick(phasePollInterval, func(t time.Time) tea.Msg {
		return exportPollMsg(t)
	})
}

func (s *HistoryScreen) View(width, height int) string {
	tabs := s.renderTabs()
	footer := s.renderExportBar()

	bodyHeight := height - lipgloss.Height(tabs) - lipgloss.Height(footer) - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	if s.tab == tabRemote {
		body = s.renderRemote(width - 4)
	} else {
		body = s.renderLocal(width - 4)
	}
	body = window(body, bodyHeight, s.scroll)

	return tabs + "\n\n" +
		lipgloss.NewStyle().PaddingLeft(2).Height(bodyHeight).MaxHeight(bodyHeight).Render(body) +
		"\n\n" + footer
}

func (s *HistoryScreen) renderTabs() string {
	active := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true)
	inactive := lipgloss.NewStyle().Foreground(theme.TextDim)

	local, remote := inactive, inactive
	if s.tab == tabLocal {
		local = active
	} else {
		remote = active
	}
	out := "  " + local.Render("This session")
	if s.deps.Remote != nil {
		out += "   " + remote.Render("Server history")
	}
	return out
}

func (s *HistoryScreen) renderLocal(width int) string {
	turns := s.deps.Timeline.Snapshot()
	if len(turns) == 0 {
		return theme.Hint().Render("No messages yet. Make your case from the chat screen.")
	}

	var b strings.Builder
	for _, t := range turns {
		switch {
		case t.IsTransient():
			b.WriteString(theme.Hint().Render(t.Text))
		case t.Sender == timeline.SenderUser:
			b.WriteString(entry("You", theme.Secondary, t.Text, width))
		default:
			b.WriteString(entry("Ignite", theme.Primary, t.Text, width))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *HistoryScreen) renderRemote(width int) string {
	switch {
	case s.remoteLoading:
		return theme.Hint().Render("Loading server history...")
	case s.remoteErr != "":
		return lipgloss.NewStyle().Foreground(theme.Error).Render("Error: " + s.remoteErr)
	case len(s.remote) == 0:
		return theme.Hint().Render("The server has no history yet.")
	}

	var b strings.Builder
	for _, e := range s.remote {
		if e.Role == evaluator.RoleUser {
			b.WriteString(entry("You", theme.Secondary, e.Content, width))
		} else {
			b.WriteString(entry("Ignite", theme.Primary, e.Content, width))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *HistoryScreen) renderExportBar() string {
	if s.deps.Exporter == nil {
		return ""
	}

	out := "  " + s.exportButton().View()

	if s.notice != "" {
		fg := theme.Success
		if s.noticeErr {
			fg = theme.Error
		}
		out += "\n  " + lipgloss.NewStyle().Foreground(fg).Render(s.notice)
	}
	return out
}

func (s *HistoryScreen) exportButton() components.Button {
	label := "Export PDF"
	if s.exporting {
		label = phaseLabel(s.phase)
	}
	return components.NewButton(label, s.canExport(), s.startExport)
}

func phaseLabel(p export.Phase) string {
	switch p {
	case export.PhaseFetchingArtifact:
		return "Downloading PDF..."
	default:
		return "Summarizing..."
	}
}

func entry(who string, c color.Color, text string, width int) string {
	label := lipgloss.NewStyle().Foreground(c).Bold(true).Render(who + ":")
	return label + " " + lipgloss.NewStyle().Foreground(theme.Text).Width(width-lipgloss.Width(who)-2).Render(text)
}

// window returns height lines of s ending scroll lines above the bottom.
func window(s string, height, scroll int) string {
	lines := strings.Split(s, "\n")
	end := len(lines) - scroll
	if end < height {
		end = min(height, len(lines))
	}
	start := max(end-height, 0)
	return strings.Join(lines[start:end], "\n")
}
