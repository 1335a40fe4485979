package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

// markdown renders bot answers, rebuilding the glamour renderer when the
// wrap width or palette changes.
type markdown struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

func newMarkdown() *markdown {
	return &markdown{}
}

// Render returns text rendered for width columns. Rendering errors fall
// back to the plain text.
func (m *markdown) Render(text string, width int) string {
	if width < 20 {
		width = 20
	}
	style := theme.Current().GlamourStyle
	if m.renderer == nil || m.width != width || m.style != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		m.renderer, m.width, m.style = r, width, style
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
