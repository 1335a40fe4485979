// Package export runs the summarize → fetch artifact → deliver sequence
// over a conversation snapshot.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/metrics"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
)

const (
	// DefaultFilename is the suggested name of the delivered artifact.
	DefaultFilename = "chat_summary.pdf"

	// DefaultMaxArtifactBytes caps how much of an artifact is read.
	DefaultMaxArtifactBytes = 64 << 20
)

// Deliverer hands a finished artifact to the user.
type Deliverer interface {
	// Deliver stores data under a name derived from suggested and returns
	// where it ended up. Any temporary resource is released before return.
	Deliver(ctx context.Context, data []byte, suggested string) (string, error)
}

// Job is one export invocation.
type Job struct {
	ID         uuid.UUID
	Phase      Phase
	Err        *PhaseError
	Artifact   string
	Path       string
	Size       int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Options configures a Pipeline.
type Options struct {
	Filename         string
	MaxArtifactBytes int64

	// OnPhase observes every phase transition. It runs on the goroutine
	// calling Run.
	OnPhase func(Job)

	Logger  *zap.Logger
	Metrics metrics.Recorder
	Now     func() time.Time
}

// Pipeline runs at most one export at a time.
type Pipeline struct {
	mu        sync.Mutex
	svc       evaluator.Summarizer
	deliverer Deliverer
	opts      Options
	logger    *zap.Logger
	metrics   metrics.Recorder
	now       func() time.Time
	phase     Phase
}

// New creates a Pipeline.
func New(svc evaluator.Summarizer, d Deliverer, opts Options) *Pipeline {
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	if opts.MaxArtifactBytes <= 0 {
		opts.MaxArtifactBytes = DefaultMaxArtifactBytes
	}
	p := &Pipeline{
		svc:       svc,
		deliverer: d,
		opts:      opts,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("export")
	if p.metrics == nil {
		p.metrics = metrics.Nop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Phase returns the phase of the in-flight job, or PhaseIdle.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Run exports snapshot. It fails fast, without starting a job, on an empty
// conversation or while another job runs. Otherwise it returns the finished
// job; a failed job is returned together with its *PhaseError.
func (p *Pipeline) Run(ctx context.Context, snapshot []timeline.Turn) (*Job, error) {
	history := HistoryFromTurns(snapshot)
	if len(history) == 0 {
		return nil, ErrEmptyConversation
	}

	p.mu.Lock()
	if p.phase.Busy() {
		p.mu.Unlock()
		return nil, ErrExportRunning
	}
	p.phase = PhaseSummarizing
	p.mu.Unlock()

	job := &Job{ID: uuid.New(), Phase: PhaseSummarizing, StartedAt: p.now()}
	p.notify(job)
	p.logger.Info("export started", zap.String("job_id", job.ID.String()), zap.Int("turns", len(history)))

	defer func() {
		p.mu.Lock()
		p.phase = PhaseIdle
		p.mu.Unlock()
	}()

	if perr := p.run(ctx, job, history); perr != nil {
		return p.fail(job, perr), perr
	}

	job.Phase = PhaseDone
	job.FinishedAt = p.now()
	p.notify(job)
	p.metrics.ObserveExport(metrics.OutcomeSuccess, job.FinishedAt.Sub(job.StartedAt))
	p.logger.Info("export done",
		zap.String("job_id", job.ID.String()),
		zap.String("path", job.Path),
		zap.Int("bytes", job.Size))
	return job, nil
}

func (p *Pipeline) run(ctx context.Context, job *Job, history []evaluator.HistoryEntry) *PhaseError {
	name, err := p.svc.Summarize(ctx, history)
	if err != nil {
		var invalid *evaluator.InvalidResponseError
		if errors.As(err, &invalid) {
			return &PhaseError{Phase: PhaseSummarizing, Reason: evaluator.Reason(err, ReasonNoFilename), Err: err}
		}
		return &PhaseError{Phase: PhaseSummarizing, Reason: evaluator.Reason(err, ReasonSummarize), Err: err}
	}
	if name == "" {
		return &PhaseError{Phase: PhaseSummarizing, Reason: ReasonNoFilename}
	}
	job.Artifact = name

	p.setPhase(job, PhaseFetchingArtifact)

	body, err := p.svc.FetchArtifact(ctx, name)
	if err != nil {
		return &PhaseError{Phase: PhaseFetchingArtifact, Reason: evaluator.Reason(err, ReasonDownload), Err: err}
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(io.LimitReader(body, p.opts.MaxArtifactBytes+1))
	if err != nil {
		return &PhaseError{Phase: PhaseFetchingArtifact, Reason: ReasonDownload, Err: err}
	}
	if len(data) == 0 {
		return &PhaseError{Phase: PhaseFetchingArtifact, Reason: ReasonEmpty, Err: ErrEmptyArtifact}
	}
	if int64(len(data)) > p.opts.MaxArtifactBytes {
		return &PhaseError{Phase: PhaseFetchingArtifact, Reason: ReasonTooLarge, Err: ErrArtifactTooLarge}
	}
	job.Size = len(data)

	path, err := p.deliverer.Deliver(ctx, data, p.opts.Filename)
	if err != nil {
		return &PhaseError{Phase: PhaseFetchingArtifact, Reason: ReasonDeliver, Err: fmt.Errorf("deliver: %w", err)}
	}
	job.Path = path
	return nil
}

func (p *Pipeline) fail(job *Job, perr *PhaseError) *Job {
	job.Phase = PhaseFailed
	job.Err = perr
	job.FinishedAt = p.now()
	p.notify(job)
	p.metrics.ObserveExport(metrics.OutcomeFailure, job.FinishedAt.Sub(job.StartedAt))
	p.logger.Warn("export failed",
		zap.String("job_id", job.ID.String()),
		zap.Stringer("phase", perr.Phase),
		zap.String("reason", perr.Reason),
		zap.Error(perr.Err))
	return job
}

func (p *Pipeline) setPhase(job *Job, phase Phase) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()

	job.Phase = phase
	p.notify(job)
}

func (p *Pipeline) notify(job *Job) {
	if p.opts.OnPhase != nil {
		p.opts.OnPhase(*job)
	}
}

// HistoryFromTurns converts durable turns to the wire history shape.
// Transient status turns are dropped.
func HistoryFromTurns(turns []timeline.Turn) []evaluator.HistoryEntry {
	out := make([]evaluator.HistoryEntry, 0, len(turns))
	for _, t := range turns {
		if t.IsTransient() {
			continue
		}
		role := evaluator.RoleAssistant
		if t.Sender == timeline.SenderUser {
			role = evaluator.RoleUser
		}
		out = append(out, evaluator.HistoryEntry{Role: role, Content: t.Text})
	}
	return out
}
