package theme

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
)

// Palette is a named set of colors. GlamourStyle names the matching
// glamour standard style used for rendered answers.
type Palette struct {
	Name         string
	GlamourStyle string

	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgCard    color.Color
	Border    color.Color
}

// Dark is the default palette: ember orange on charcoal.
var Dark = Palette{
	Name:         "dark",
	GlamourStyle: "dark",
	Primary:      lipgloss.Color("#F97316"), // Ember
	Secondary:    lipgloss.Color("#FBBF24"), // Amber
	Accent:       lipgloss.Color("#38BDF8"), // Sky
	Success:      lipgloss.Color("#22C55E"),
	Error:        lipgloss.Color("#F43F5E"),
	Text:         lipgloss.Color("#F5F5F4"),
	TextDim:      lipgloss.Color("#A8A29E"),
	BgCard:       lipgloss.Color("#1C1917"),
	Border:       lipgloss.Color("#44403C"),
}

// Light is the alternate palette toggled from the chat screen.
var Light = Palette{
	Name:         "light",
	GlamourStyle: "light",
	Primary:      lipgloss.Color("#C2410C"),
	Secondary:    lipgloss.Color("#B45309"),
	Accent:       lipgloss.Color("#0369A1"),
	Success:      lipgloss.Color("#15803D"),
	Error:        lipgloss.Color("#BE123C"),
	Text:         lipgloss.Color("#1C1917"),
	TextDim:      lipgloss.Color("#78716C"),
	BgCard:       lipgloss.Color("#F5F5F4"),
	Border:       lipgloss.Color("#D6D3D1"),
}

// Active colors. Renderers read these at render time so a palette switch
// takes effect on the next frame.
var (
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgCard    color.Color
	Border    color.Color
)

var (
	mu      sync.Mutex
	current Palette
)

func init() {
	Use(Dark)
}

// Use makes p the active palette.
func Use(p Palette) {
	mu.Lock()
	defer mu.Unlock()

	current = p
	Primary = p.Primary
	Secondary = p.Secondary
	Accent = p.Accent
	Success = p.Success
	Error = p.Error
	Text = p.Text
	TextDim = p.TextDim
	BgCard = p.BgCard
	Border = p.Border
}

// Current returns the active palette.
func Current() Palette {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Toggle switches between Dark and Light and returns the new palette.
func Toggle() Palette {
	next := Light
	if Current().Name == Light.Name {
		next = Dark
	}
	Use(next)
	return next
}

// Title is the bold heading style.
func Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(Primary)
}

// Hint is the dim italic style for secondary text.
func Hint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TextDim).Italic(true)
}

// Card is a bordered panel.
func Card() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
}

// ButtonActive and ButtonInactive style enabled and disabled buttons.
func ButtonActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(Primary).
		Foreground(BgCard).
		Bold(true).
		Padding(0, 2)
}

func ButtonInactive() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(TextDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
}
