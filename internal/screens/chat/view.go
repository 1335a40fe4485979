package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/layout"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

const inputHeight = 3

func (s *ChatScreen) View(width, height int) string {
	if s.sidebarVisible(width) {
		sidebar := s.levels.View(layout.SidebarWidth, height, s.sidebarFocused)
		main := s.renderMain(width-layout.SidebarWidth, height)
		return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}
	return s.renderMain(width, height)
}

func (s *ChatScreen) sidebarVisible(width int) bool {
	return s.sidebarOpen && !layout.IsCompactWidth(width)
}

func (s *ChatScreen) renderMain(width, height int) string {
	msgHeight := height - inputHeight
	if msgHeight < 1 {
		msgHeight = 1
	}

	body := s.renderTurns(width - 2)
	body = layout.TailLines(body, msgHeight)

	messages := lipgloss.NewStyle().
		Width(width).
		Height(msgHeight).
		MaxHeight(msgHeight).
		PaddingLeft(1).
		Render(body)
	return messages + "\n" + s.input.View(width)
}

func (s *ChatScreen) renderTurns(width int) string {
	turns := s.deps.Timeline.Snapshot()
	if len(turns) == 0 {
		return s.renderWelcome(width)
	}

	var b strings.Builder
	for _, t := range turns {
		b.WriteString(s.renderTurn(t, width))
		b.WriteString("\n\n")
	}

	// Nothing to show yet beyond the question.
	if s.pending() && !turns[len(turns)-1].IsTransient() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(spinnerFrames[s.spinnerFrame] + " Evaluating your argument..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *ChatScreen) renderTurn(t timeline.Turn, width int) string {
	stamp := lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Timestamp.Format("15:04"))

	switch {
	case t.IsTransient():
		return lipgloss.NewStyle().Foreground(theme.Accent).Italic(true).
			Render(spinnerFrames[s.spinnerFrame] + " " + t.Text)

	case t.Sender == timeline.SenderUser:
		label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("You") + " " + stamp
		text := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(t.Text)
		return label + "\n" + text

	default:
		label := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Ignite") + " " + stamp
		return label + "\n" + s.markdown.Render(t.Text, width)
	}
}

func (s *ChatScreen) renderWelcome(width int) string {
	level := s.deps.Progress.ActiveLevel()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title().Render("Welcome to Ignite"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(
		"Argue a leadership decision and the evaluator will respond in character. " +
			"Unlock harder levels in order from the sidebar."))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(level.Title))
	if level.Summary != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint().Width(width).Render(level.Summary))
	}
	return b.String()
}
