package export

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/delivery"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
)

type fakeDeliverer struct {
	mu    sync.Mutex
	calls int
	data  []byte
	name  string
	err   error
}

func (f *fakeDeliverer) Deliver(_ context.Context, data []byte, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.data = append([]byte(nil), data...)
	f.name = name
	return "/downloads/" + name, nil
}

func conversation() []timeline.Turn {
	tl := timeline.New()
	tl.AppendUser("we should cut costs")
	tl.ResolveTransientStatus("Consider long-term impact.")
	return tl.Snapshot()
}

func TestRun_Success(t *testing.T) {
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Filename: "summary_42.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: []byte("%PDF-1.4")})
	d := &fakeDeliverer{}

	var phases []Phase
	p := New(svc, d, Options{OnPhase: func(j Job) { phases = append(phases, j.Phase) }})

	job, err := p.Run(context.Background(), conversation())
	require.NoError(t, err)
	assert.Equal(t, PhaseDone, job.Phase)
	assert.Equal(t, "summary_42.pdf", job.Artifact)
	assert.Equal(t, "/downloads/chat_summary.pdf", job.Path)
	assert.Equal(t, 8, job.Size)
	assert.Equal(t, []Phase{PhaseSummarizing, PhaseFetchingArtifact, PhaseDone}, phases)

	assert.Equal(t, "%PDF-1.4", string(d.data))
	assert.Equal(t, DefaultFilename, d.name)
	assert.Equal(t, []string{"summary_42.pdf"}, svc.FetchCalls)
	assert.Equal(t, [][]evaluator.HistoryEntry{{
		{Role: evaluator.RoleUser, Content: "we should cut costs"},
		{Role: evaluator.RoleAssistant, Content: "Consider long-term impact."},
	}}, svc.SummarizeCalls)
	assert.Equal(t, 0, svc.OpenBodies())
	assert.Equal(t, PhaseIdle, p.Phase())
}

func TestRun_EmptyConversation(t *testing.T) {
	svc := evaluator.NewMockService()
	p := New(svc, &fakeDeliverer{}, Options{})

	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyConversation)

	// A lone status overlay is not conversation.
	tl := timeline.New()
	_, _ = tl.BeginTransientStatus(timeline.TagRetrieval)
	_, err = p.Run(context.Background(), tl.Snapshot())
	assert.ErrorIs(t, err, ErrEmptyConversation)

	assert.Empty(t, svc.SummarizeCalls)
	assert.Equal(t, PhaseIdle, p.Phase())
}

func TestRun_SummarizeDetail(t *testing.T) {
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Err: &evaluator.ServiceError{Op: "summarize", StatusCode: 400, Detail: "no content"}})
	d := &fakeDeliverer{}
	p := New(svc, d, Options{})

	job, err := p.Run(context.Background(), conversation())
	var perr *PhaseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseSummarizing, perr.Phase)
	assert.Equal(t, "no content", perr.Reason)
	assert.Equal(t, "Export failed: no content. Please try again.", perr.UserMessage())
	assert.Equal(t, PhaseFailed, job.Phase)
	assert.Equal(t, 0, d.calls)
	assert.Empty(t, svc.FetchCalls)
	assert.Equal(t, 0, svc.OpenBodies())
}

func TestRun_SummarizeFallbackReasons(t *testing.T) {
	tests := []struct {
		name    string
		summary evaluator.MockSummary
		reason  string
	}{
		{"transport", evaluator.MockSummary{Err: &evaluator.TransportError{Op: "summarize", Err: errors.New("refused")}}, ReasonSummarize},
		{"invalid body", evaluator.MockSummary{Err: &evaluator.InvalidResponseError{Op: "summarize", Err: errors.New("missing")}}, ReasonNoFilename},
		{"empty name", evaluator.MockSummary{Filename: ""}, ReasonNoFilename},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := evaluator.NewMockService()
			svc.AddSummary(tt.summary)
			job, err := New(svc, &fakeDeliverer{}, Options{}).Run(context.Background(), conversation())
			require.Error(t, err)
			assert.Equal(t, tt.reason, job.Err.Reason)
			assert.Equal(t, PhaseSummarizing, job.Err.Phase)
		})
	}
}

func TestRun_FetchFailures(t *testing.T) {
	tests := []struct {
		name     string
		artifact evaluator.MockArtifact
		reason   string
		sentinel error
	}{
		{"service detail", evaluator.MockArtifact{Err: &evaluator.ServiceError{Op: "fetch artifact", StatusCode: 404, Detail: "PDF not found"}}, "PDF not found", nil},
		{"transport", evaluator.MockArtifact{Err: &evaluator.TransportError{Op: "fetch artifact", Err: errors.New("reset")}}, ReasonDownload, nil},
		{"zero bytes", evaluator.MockArtifact{Data: []byte{}}, ReasonEmpty, ErrEmptyArtifact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := evaluator.NewMockService()
			svc.AddSummary(evaluator.MockSummary{Filename: "s.pdf"})
			svc.AddArtifact(tt.artifact)
			d := &fakeDeliverer{}

			job, err := New(svc, d, Options{}).Run(context.Background(), conversation())
			require.Error(t, err)
			assert.Equal(t, PhaseFailed, job.Phase)
			assert.Equal(t, PhaseFetchingArtifact, job.Err.Phase)
			assert.Equal(t, tt.reason, job.Err.Reason)
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
			assert.Equal(t, 0, d.calls, "no download on failure")
			assert.Equal(t, 0, svc.OpenBodies(), "artifact body released")
		})
	}
}

func TestRun_TooLarge(t *testing.T) {
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Filename: "s.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: make([]byte, 11)})

	job, err := New(svc, &fakeDeliverer{}, Options{MaxArtifactBytes: 10}).Run(context.Background(), conversation())
	assert.ErrorIs(t, err, ErrArtifactTooLarge)
	assert.Equal(t, ReasonTooLarge, job.Err.Reason)
	assert.Equal(t, 0, svc.OpenBodies())
}

func TestRun_DeliverFailure(t *testing.T) {
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Filename: "s.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: []byte("pdf")})

	job, err := New(svc, &fakeDeliverer{err: errors.New("disk full")}, Options{}).Run(context.Background(), conversation())
	require.Error(t, err)
	assert.Equal(t, ReasonDeliver, job.Err.Reason)
	assert.Equal(t, 0, svc.OpenBodies())
}

func TestRun_RejectsConcurrentExport(t *testing.T) {
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Filename: "s.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: []byte("pdf")})

	var (
		p         *Pipeline
		nestedErr error
	)
	p = New(svc, &fakeDeliverer{}, Options{OnPhase: func(j Job) {
		if j.Phase == PhaseFetchingArtifact {
			_, nestedErr = p.Run(context.Background(), conversation())
		}
	}})

	_, err := p.Run(context.Background(), conversation())
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, ErrExportRunning)
	assert.Len(t, svc.SummarizeCalls, 1)

	// A failed or finished job never blocks the next one.
	svc.AddSummary(evaluator.MockSummary{Filename: "s2.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: []byte("pdf")})
	p.opts.OnPhase = nil
	_, err = p.Run(context.Background(), conversation())
	assert.NoError(t, err)
}

func TestRun_WithFileDeliverer(t *testing.T) {
	dir := t.TempDir()
	svc := evaluator.NewMockService()
	svc.AddSummary(evaluator.MockSummary{Filename: "s.pdf"})
	svc.AddArtifact(evaluator.MockArtifact{Data: []byte("%PDF")})

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := New(svc, delivery.NewFileDeliverer(dir), Options{Now: func() time.Time { return fixed }})
	job, err := p.Run(context.Background(), conversation())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFilename), job.Path)
	assert.Equal(t, fixed, job.FinishedAt)
}

func TestHistoryFromTurns(t *testing.T) {
	tl := timeline.New()
	tl.AppendUser("q")
	_, _ = tl.BeginTransientStatus(timeline.TagWebLookup)

	got := HistoryFromTurns(tl.Snapshot())
	assert.Equal(t, []evaluator.HistoryEntry{{Role: evaluator.RoleUser, Content: "q"}}, got)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "fetchingArtifact", PhaseFetchingArtifact.String())
	assert.True(t, PhaseFailed.Terminal())
	assert.False(t, PhaseIdle.Busy())
}
