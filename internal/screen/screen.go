package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/layout"
)

// Screen is one view on the router stack.
type Screen interface {
	// Init returns the command to run when the screen becomes active for
	// the first time.
	Init() tea.Cmd

	// Update handles a message and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen body, without header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen supply its own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen supply the right-hand header status.
type StatusProvider interface {
	Status() string
}

// Resumer is implemented by screens that need to refresh when they become
// active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}
