package chat

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/progression"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/router"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screen"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/components"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/layout"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Deps are the collaborators of the chat screen.
type Deps struct {
	Progress    *progression.State
	Timeline    *timeline.Timeline
	Coordinator *coordinator.Coordinator

	// OpenHistory builds the history screen. Nil hides the shortcut.
	OpenHistory func() screen.Screen

	// Context bounds dispatched requests. Defaults to context.Background.
	Context context.Context
}

// ChatScreen is the main conversation view with the level sidebar.
type ChatScreen struct {
	deps     Deps
	input    components.ChatInput
	levels   components.LevelList
	markdown *markdown

	sidebarOpen    bool
	sidebarFocused bool
	spinnerFrame   int
	spinning       bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.StatusProvider = (*ChatScreen)(nil)
var _ screen.Resumer = (*ChatScreen)(nil)

// New creates the chat screen with the sidebar open.
func New(deps Deps) *ChatScreen {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	s := &ChatScreen{
		deps:        deps,
		input:       components.NewChatInput("Make your case and press Enter..."),
		markdown:    newMarkdown(),
		sidebarOpen: true,
	}
	s.levels = components.NewLevelList(s.levelItems(), func(id int) tea.Cmd {
		return func() tea.Msg { return selectLevelMsg{ID: id} }
	})
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

// Resume refocuses the input when returning from another screen.
func (s *ChatScreen) Resume() tea.Cmd {
	s.levels.SetItems(s.levelItems())
	if s.pending() {
		return nil
	}
	return s.input.SetDisabled(false)
}

func (s *ChatScreen) Title() string {
	return "Chat"
}

// Status shows the active level and whether a request is in flight.
func (s *ChatScreen) Status() string {
	status := s.deps.Progress.ActiveLevel().Title
	if s.pending() {
		status += " · thinking"
	}
	return status + "  "
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.sidebarFocused {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Level"},
			{Key: "Enter", Description: "Select"},
			{Key: "Tab", Description: "Chat"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Levels"},
		{Key: "Ctrl+B", Description: "Sidebar"},
		{Key: "Ctrl+T", Description: "Theme"},
	}
	if s.deps.OpenHistory != nil {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+O", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case evalDoneMsg:
		return s.handleEvalDone(msg)

	case statusHoldDoneMsg:
		return s.handleHoldDone(msg)

	case spinnerTickMsg:
		if !s.pending() {
			s.spinning = false
			return s, nil
		}
		s.spinnerFrame = (s.spinnerFrame + 1) % len(spinnerFrames)
		return s, spinnerTick()

	case selectLevelMsg:
		// A gated selection is a silent no-op; unknown ids cannot come
		// from the sidebar.
		_, _ = s.deps.Progress.SelectLevel(msg.ID)
		s.levels.SetItems(s.levelItems())
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "ctrl+b":
		s.sidebarOpen = !s.sidebarOpen
		if !s.sidebarOpen {
			s.sidebarFocused = false
		}
		return s, nil
	case "ctrl+t":
		theme.Toggle()
		return s, nil
	case "ctrl+o":
		if s.deps.OpenHistory == nil {
			return s, nil
		}
		return s, router.Push(s.deps.OpenHistory())
	case "tab":
		if s.sidebarOpen {
			s.sidebarFocused = !s.sidebarFocused
		}
		return s, nil
	}

	if s.sidebarFocused {
		var cmd tea.Cmd
		s.levels, cmd = s.levels.Update(msg)
		return s, cmd
	}

	if msg.String() == "enter" {
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit starts a request for the typed text. Blank text and a request
// already in flight are ignored without touching the conversation.
func (s *ChatScreen) submit() (screen.Screen, tea.Cmd) {
	req, err := s.deps.Coordinator.Submit(s.input.Value())
	if err != nil {
		return s, nil
	}

	s.input.Reset()
	s.input.SetDisabled(true)

	cmds := []tea.Cmd{s.dispatch(*req)}
	if !s.spinning {
		s.spinning = true
		cmds = append(cmds, spinnerTick())
	}
	return s, tea.Batch(cmds...)
}

func (s *ChatScreen) dispatch(req coordinator.PendingRequest) tea.Cmd {
	ctx := s.deps.Context
	coord := s.deps.Coordinator
	return func() tea.Msg {
		return evalDoneMsg{Result: coord.Dispatch(ctx, req)}
	}
}

func (s *ChatScreen) handleEvalDone(msg evalDoneMsg) (screen.Screen, tea.Cmd) {
	if s.deps.Coordinator.Apply(msg.Result) == coordinator.StepHolding {
		id := msg.Result.RequestID
		return s, tea.Tick(s.deps.Coordinator.StatusHold(), func(time.Time) tea.Msg {
			return statusHoldDoneMsg{ID: id}
		})
	}
	return s, s.idle()
}

func (s *ChatScreen) handleHoldDone(msg statusHoldDoneMsg) (screen.Screen, tea.Cmd) {
	req, ok := s.deps.Coordinator.Pending()
	if !ok || req.ID != msg.ID {
		return s, nil
	}
	s.deps.Coordinator.Resolve()
	return s, s.idle()
}

// idle re-enables input once the coordinator is back to Idle.
func (s *ChatScreen) idle() tea.Cmd {
	if s.pending() {
		return nil
	}
	return s.input.SetDisabled(false)
}

func (s *ChatScreen) pending() bool {
	return s.deps.Coordinator.State() == coordinator.StatePending
}

func (s *ChatScreen) levelItems() []components.LevelItem {
	p := s.deps.Progress
	active := p.Active()
	levels := p.Catalog().All()
	items := make([]components.LevelItem, 0, len(levels))
	for _, l := range levels {
		items = append(items, components.LevelItem{
			ID:      l.ID,
			Title:   l.Title,
			Summary: l.Preview(60),
			Locked:  !p.IsUnlocked(l.ID),
			Active:  l.ID == active,
		})
	}
	return items
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
