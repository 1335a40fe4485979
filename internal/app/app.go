package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/export"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/progression"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/router"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screen"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screens/chat"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screens/history"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/layout"
)

// Deps wires the core into the TUI. Remote and Exporter may be nil.
type Deps struct {
	Progress    *progression.State
	Timeline    *timeline.Timeline
	Coordinator *coordinator.Coordinator
	Remote      evaluator.HistorySource
	Exporter    *export.Pipeline
	Logger      *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	logger *zap.Logger
	width  int
	height int
}

// NewModel creates the root model with the chat screen at the bottom of
// the stack.
func NewModel(ctx context.Context, d Deps) AppModel {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	openHistory := func() screen.Screen {
		return history.New(history.Deps{
			Timeline: d.Timeline,
			Remote:   d.Remote,
			Exporter: d.Exporter,
			Context:  ctx,
		})
	}
	chatScreen := chat.New(chat.Deps{
		Progress:    d.Progress,
		Timeline:    d.Timeline,
		Coordinator: d.Coordinator,
		OpenHistory: openHistory,
		Context:     ctx,
	})

	return AppModel{
		router: router.New(chatScreen),
		logger: logger.Named("tui"),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case router.PushScreenMsg:
		m.logger.Debug("push screen", zap.String("screen", msg.Screen.Title()))
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	header := layout.RenderHeader(title, status, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, d Deps) error {
	p := tea.NewProgram(NewModel(ctx, d), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
