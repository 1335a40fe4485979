package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/catalog"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/progression"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/router"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/screen"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/ui/theme"
)

type fixture struct {
	screen *ChatScreen
	mock   *evaluator.MockService
	coord  *coordinator.Coordinator
	tl     *timeline.Timeline
	prog   *progression.State
}

func newFixture(t *testing.T, hold time.Duration, responses ...evaluator.MockResponse) *fixture {
	t.Helper()
	prog := progression.New(catalog.Default())
	tl := timeline.New()
	mock := evaluator.NewMockService(responses...)
	opts := coordinator.DefaultOptions()
	opts.StatusHold = hold
	coord := coordinator.New(prog, tl, mock, opts)

	s := New(Deps{Progress: prog, Timeline: tl, Coordinator: coord})
	s.Init()
	return &fixture{screen: s, mock: mock, coord: coord, tl: tl, prog: prog}
}

func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.screen.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func (f *fixture) press(code rune) tea.Cmd {
	_, cmd := f.screen.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func (f *fixture) ctrl(r rune) tea.Cmd {
	_, cmd := f.screen.Update(tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl})
	return cmd
}

// deliver runs the dispatch the screen scheduled and feeds its result back.
func (f *fixture) deliver(t *testing.T) tea.Cmd {
	t.Helper()
	req, ok := f.coord.Pending()
	require.True(t, ok, "expected a pending request")
	_, cmd := f.screen.Update(evalDoneMsg{Result: f.coord.Dispatch(context.Background(), req)})
	return cmd
}

func TestSubmit_PlainAnswer(t *testing.T) {
	f := newFixture(t, 0, evaluator.MockResponse{Response: evaluator.Response{Text: "Consider long-term impact."}})

	f.typeText("we should cut costs")
	cmd := f.press(tea.KeyEnter)

	require.NotNil(t, cmd, "submit should schedule the request")
	assert.Equal(t, coordinator.StatePending, f.coord.State())
	assert.True(t, f.screen.input.Disabled(), "input must be disabled while pending")
	assert.Equal(t, "", f.screen.input.Value())
	assert.Equal(t, 1, f.tl.Len())
	assert.Contains(t, f.screen.Status(), "thinking")

	f.deliver(t)

	assert.Equal(t, coordinator.StateIdle, f.coord.State())
	assert.False(t, f.screen.input.Disabled())
	turns := f.tl.Durable()
	require.Len(t, turns, 2)
	assert.Equal(t, "we should cut costs", turns[0].Text)
	assert.Equal(t, "Consider long-term impact.", turns[1].Text)
	assert.Equal(t, 1, f.mock.CallCount())
	assert.Equal(t, 1, f.mock.Calls[0].Level)
}

func TestSubmit_BlankIsIgnored(t *testing.T) {
	f := newFixture(t, 0)

	f.typeText("   ")
	cmd := f.press(tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Equal(t, 0, f.tl.Len())
	assert.Equal(t, coordinator.StateIdle, f.coord.State())
	assert.Equal(t, 0, f.mock.CallCount())
}

func TestSubmit_InputBlockedWhilePending(t *testing.T) {
	f := newFixture(t, 0, evaluator.MockResponse{Response: evaluator.Response{Text: "ok"}})

	f.typeText("first")
	f.press(tea.KeyEnter)
	f.typeText("second")
	cmd := f.press(tea.KeyEnter)

	assert.Nil(t, cmd, "a second request must not start")
	assert.Equal(t, "", f.screen.input.Value())
	assert.Equal(t, 1, f.tl.Len())
}

func TestSubmit_FailureBecomesBotTurn(t *testing.T) {
	f := newFixture(t, 0)

	f.typeText("anything")
	f.press(tea.KeyEnter)
	f.deliver(t)

	turns := f.tl.Durable()
	require.Len(t, turns, 2)
	assert.Equal(t, coordinator.FailureMessage, turns[1].Text)
	assert.False(t, f.screen.input.Disabled(), "input must come back after a failure")
}

func TestStatusHold(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond,
		evaluator.MockResponse{Response: evaluator.Response{Text: "ok", WebLookup: true}})

	f.typeText("what is the latest market trend")
	f.press(tea.KeyEnter)
	req, _ := f.coord.Pending()
	cmd := f.deliver(t)

	require.NotNil(t, cmd, "holding should schedule the resolve tick")
	status, ok := f.tl.Transient()
	require.True(t, ok)
	assert.Equal(t, timeline.TagWebLookup, status.StatusTag)
	assert.True(t, f.screen.input.Disabled())
	assert.Contains(t, f.screen.View(120, 40), timeline.StatusText(timeline.TagWebLookup))

	// A tick for some other request changes nothing.
	f.screen.Update(statusHoldDoneMsg{ID: uuid.New()})
	_, ok = f.tl.Transient()
	assert.True(t, ok)

	f.screen.Update(statusHoldDoneMsg{ID: req.ID})

	_, ok = f.tl.Transient()
	assert.False(t, ok)
	turns := f.tl.Durable()
	require.Len(t, turns, 2)
	assert.Equal(t, "ok", turns[1].Text)
	assert.Equal(t, coordinator.StateIdle, f.coord.State())
	assert.False(t, f.screen.input.Disabled())
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	f := newFixture(t, 0, evaluator.MockResponse{Response: evaluator.Response{Text: "ok"}})

	f.typeText("go")
	f.press(tea.KeyEnter)
	_, cmd := f.screen.Update(spinnerTickMsg(time.Now()))
	assert.NotNil(t, cmd, "spinner keeps ticking while pending")
	assert.Equal(t, 1, f.screen.spinnerFrame)

	f.deliver(t)
	_, cmd = f.screen.Update(spinnerTickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestSidebar_SelectLevels(t *testing.T) {
	f := newFixture(t, 0)

	f.press(tea.KeyTab)
	require.True(t, f.screen.sidebarFocused)

	f.press(tea.KeyDown)
	cmd := f.press(tea.KeyEnter)
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, selectLevelMsg{ID: 2}, msg)

	f.screen.Update(msg)
	assert.Equal(t, 2, f.prog.Active())
	assert.Equal(t, []int{1, 2}, f.prog.Unlocked())

	// Level 4 is gated behind 3: silent no-op.
	f.screen.Update(selectLevelMsg{ID: 4})
	assert.Equal(t, 2, f.prog.Active())
	assert.False(t, f.prog.IsUnlocked(4))
	assert.Contains(t, f.screen.Status(), "Level 2")
}

func TestSidebar_Toggle(t *testing.T) {
	f := newFixture(t, 0)

	assert.Contains(t, f.screen.View(120, 30), "Levels")

	f.press(tea.KeyTab)
	f.ctrl('b')
	assert.False(t, f.screen.sidebarOpen)
	assert.False(t, f.screen.sidebarFocused, "hiding the sidebar drops its focus")
	assert.NotContains(t, f.screen.View(120, 30), "Levels")

	// Tab does nothing while the sidebar is closed.
	f.press(tea.KeyTab)
	assert.False(t, f.screen.sidebarFocused)
}

func TestSidebar_HiddenWhenNarrow(t *testing.T) {
	f := newFixture(t, 0)
	assert.NotContains(t, f.screen.View(70, 30), "Levels")
}

func TestThemeToggle(t *testing.T) {
	t.Cleanup(func() { theme.Use(theme.Dark) })
	f := newFixture(t, 0)

	f.ctrl('t')
	assert.Equal(t, "light", theme.Current().Name)
	f.ctrl('t')
	assert.Equal(t, "dark", theme.Current().Name)
}

func TestOpenHistory(t *testing.T) {
	f := newFixture(t, 0)
	assert.Nil(t, f.ctrl('o'), "no history screen wired")

	opened := &stubScreen{}
	f.screen.deps.OpenHistory = func() screen.Screen { return opened }
	cmd := f.ctrl('o')
	require.NotNil(t, cmd)
	assert.Equal(t, router.PushScreenMsg{Screen: opened}, cmd())
}

func TestView_WelcomeAndTurns(t *testing.T) {
	f := newFixture(t, 0, evaluator.MockResponse{Response: evaluator.Response{Text: "Solid reasoning"}})

	v := f.screen.View(120, 30)
	assert.Contains(t, v, "Welcome to Ignite")

	f.typeText("hire more engineers")
	f.press(tea.KeyEnter)
	f.deliver(t)

	v = f.screen.View(120, 30)
	assert.Contains(t, v, "hire more engineers")
	assert.Contains(t, v, "Solid")
	assert.False(t, strings.Contains(v, "Welcome to Ignite"))
}

func TestCovered_AnswerStillLands(t *testing.T) {
	f := newFixture(t, 0, evaluator.MockResponse{Response: evaluator.Response{Text: "ok"}})
	r := router.New(f.screen)

	f.typeText("we should cut costs")
	f.press(tea.KeyEnter)
	req, ok := f.coord.Pending()
	require.True(t, ok)

	r.Update(router.PushScreenMsg{Screen: &stubScreen{}})
	r.Update(evalDoneMsg{Result: f.coord.Dispatch(context.Background(), req)})
	assert.Equal(t, coordinator.StateIdle, f.coord.State())

	r.Update(router.PopScreenMsg{})
	assert.Same(t, f.screen, r.Active())
	assert.False(t, f.screen.input.Disabled())
	assert.Equal(t, 2, f.tl.Len())
}

func TestCovered_StatusHoldResolves(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond,
		evaluator.MockResponse{Response: evaluator.Response{Text: "ok", WebLookup: true}})
	r := router.New(f.screen)

	f.typeText("what is the latest market trend")
	f.press(tea.KeyEnter)
	req, _ := f.coord.Pending()

	r.Update(router.PushScreenMsg{Screen: &stubScreen{}})
	hold := r.Update(evalDoneMsg{Result: f.coord.Dispatch(context.Background(), req)})
	require.NotNil(t, hold, "holding should schedule the resolve tick")
	r.Update(hold())

	_, ok := f.tl.Transient()
	assert.False(t, ok)
	assert.Equal(t, coordinator.StateIdle, f.coord.State())

	r.Update(router.PopScreenMsg{})
	assert.False(t, f.screen.input.Disabled())
	require.Len(t, f.tl.Durable(), 2)
	assert.Equal(t, "ok", f.tl.Durable()[1].Text)
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                            { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "" }
func (s *stubScreen) Title() string                           { return "stub" }
