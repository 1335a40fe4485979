package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

// LevelItem is one row of the level sidebar.
type LevelItem struct {
	ID      int
	Title   string
	Summary string
	Locked  bool
	Active  bool
}

// LevelList is the vertical level picker. Locked rows stay selectable
// because choosing one is an unlock attempt.
type LevelList struct {
	Items    []LevelItem
	Cursor   int
	OnSelect func(id int) tea.Cmd
}

// NewLevelList creates a list with the cursor on the active item.
func NewLevelList(items []LevelItem, onSelect func(id int) tea.Cmd) LevelList {
	l := LevelList{OnSelect: onSelect}
	l.SetItems(items)
	return l
}

// SetItems replaces the rows, keeping the cursor in range and on the
// active item when the cursor has not been moved past the end.
func (l *LevelList) SetItems(items []LevelItem) {
	l.Items = items
	if l.Cursor >= len(items) {
		l.Cursor = 0
	}
	if l.Cursor == 0 {
		for i, it := range items {
			if it.Active {
				l.Cursor = i
				break
			}
		}
	}
}

// Update handles navigation and selection keys.
func (l LevelList) Update(msg tea.Msg) (LevelList, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.Items) == 0 {
		return l, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if l.Cursor > 0 {
			l.Cursor--
		}
	case "down", "j":
		if l.Cursor < len(l.Items)-1 {
			l.Cursor++
		}
	case "enter", "space":
		if l.OnSelect != nil {
			return l, l.OnSelect(l.Items[l.Cursor].ID)
		}
	}
	return l, nil
}

// View renders the rows inside a bordered sidebar. focused highlights the
// cursor row.
func (l LevelList) View(width, height int, focused bool) string {
	var b strings.Builder
	b.WriteString(theme.Title().Render("Levels"))
	b.WriteString("\n\n")

	inner := width - 4
	for i, it := range l.Items {
		icon := "○"
		switch {
		case it.Locked:
			icon = "🔒"
		case it.Active:
			icon = "●"
		}

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case focused && i == l.Cursor:
			style = style.Foreground(theme.Primary).Bold(true)
		case it.Locked:
			style = style.Foreground(theme.TextDim)
		case it.Active:
			style = style.Foreground(theme.Secondary).Bold(true)
		}

		prefix := "  "
		if focused && i == l.Cursor {
			prefix = "▸ "
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%s %s", prefix, icon, it.Title)))
		b.WriteString("\n")

		if !it.Locked && it.Summary != "" {
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Width(inner).
				PaddingLeft(4).
				Render(it.Summary))
			b.WriteString("\n")
		}
	}

	border := theme.Border
	if focused {
		border = theme.Primary
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(b.String())
}
