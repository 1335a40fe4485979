package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

// DefaultCharLimit caps a single argument.
const DefaultCharLimit = 2000

// ChatInput is the single-line argument box. While disabled it drops key
// input and shows DisabledHint instead of the placeholder.
type ChatInput struct {
	Model        textinput.Model
	DisabledHint string
	disabled     bool
}

// NewChatInput creates a focused input.
func NewChatInput(placeholder string) ChatInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = DefaultCharLimit
	ti.Focus()
	return ChatInput{Model: ti, DisabledHint: "Waiting for the evaluator..."}
}

// Init returns the focus command.
func (c ChatInput) Init() tea.Cmd {
	return c.Model.Focus()
}

// Update forwards msg to the text model unless the input is disabled.
func (c ChatInput) Update(msg tea.Msg) (ChatInput, tea.Cmd) {
	if c.disabled {
		if _, ok := msg.(tea.KeyMsg); ok {
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.Model, cmd = c.Model.Update(msg)
	return c, cmd
}

// View renders the input in a bordered box of the given width.
func (c ChatInput) View(width int) string {
	body := c.Model.View()
	border := theme.Primary
	if c.disabled {
		body = theme.Hint().Render(c.DisabledHint)
		border = theme.Border
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(body)
}

// SetDisabled blurs or refocuses the input.
func (c *ChatInput) SetDisabled(disabled bool) tea.Cmd {
	c.disabled = disabled
	if disabled {
		c.Model.Blur()
		return nil
	}
	return c.Model.Focus()
}

// Disabled reports whether input is currently blocked.
func (c ChatInput) Disabled() bool {
	return c.disabled
}

// Value returns the raw text.
func (c ChatInput) Value() string {
	return c.Model.Value()
}

// Blank reports whether the text is empty or whitespace only.
func (c ChatInput) Blank() bool {
	return strings.TrimSpace(c.Model.Value()) == ""
}

// Reset clears the text.
func (c *ChatInput) Reset() {
	c.Model.Reset()
}
