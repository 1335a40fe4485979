package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

// Button is a labelled action that ignores presses while inactive.
type Button struct {
	Label   string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{Label: label, Active: active, OnPress: onPress}
}

// Press runs OnPress when the button is active.
func (b Button) Press() tea.Cmd {
	if !b.Active || b.OnPress == nil {
		return nil
	}
	return b.OnPress()
}

// View renders the button.
func (b Button) View() string {
	if b.Active {
		return theme.ButtonActive().Render(b.Label)
	}
	return theme.ButtonInactive().Render(b.Label)
}
