// Package coordinator owns the lifecycle of the single outstanding query:
// it binds the query to the active level, calls the evaluator, and
// reconciles the outcome into the conversation timeline.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/metrics"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/progression"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/timeline"
)

const (
	// FailureMessage is the bot turn shown when a request fails for any reason.
	FailureMessage = "Something went wrong. Please try again."

	// DefaultStatusHold is how long a transient status stays visible before
	// the parked answer replaces it.
	DefaultStatusHold = 3 * time.Second
)

// State is the coordinator's dwell state. Resolving is a transition only.
type State int

const (
	StateIdle State = iota
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Step tells the caller what to do after Apply.
type Step int

const (
	// StepDone means the request is resolved and the coordinator is idle.
	StepDone Step = iota

	// StepHolding means a transient status is showing and Resolve must be
	// called once the status hold elapses.
	StepHolding
)

// PendingRequest is the one in-flight query. Its binding is fixed at submit.
type PendingRequest struct {
	ID           uuid.UUID
	QueryText    string
	BoundLevelID int
	BoundPrompt  string
	StartedAt    time.Time
}

// Result is the outcome of Dispatch.
type Result struct {
	RequestID uuid.UUID
	Response  *evaluator.Response
	Err       error
	Latency   time.Duration
}

// Options configures a Coordinator.
type Options struct {
	// StatusSignals enables transient status turns for flagged answers.
	StatusSignals bool

	// StatusHold is how long a status stays up. Zero or less resolves at once.
	StatusHold time.Duration

	// OnStatus is called, outside the coordinator lock, whenever a transient
	// status turn begins.
	OnStatus func(timeline.Turn)

	Logger  *zap.Logger
	Metrics metrics.Recorder
	Now     func() time.Time
}

// DefaultOptions returns options with status signals on and the default hold.
func DefaultOptions() Options {
	return Options{
		StatusSignals: true,
		StatusHold:    DefaultStatusHold,
	}
}

// Coordinator drives Idle → Pending → Idle for one query at a time.
type Coordinator struct {
	mu       sync.Mutex
	progress *progression.State
	timeline *timeline.Timeline
	eval     evaluator.Evaluator
	opts     Options
	logger   *zap.Logger
	metrics  metrics.Recorder
	now      func() time.Time

	state   State
	pending *PendingRequest
	parked  *Result
}

// New creates an idle Coordinator.
func New(p *progression.State, tl *timeline.Timeline, ev evaluator.Evaluator, opts Options) *Coordinator {
	c := &Coordinator{
		progress: p,
		timeline: tl,
		eval:     ev,
		opts:     opts,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("coordinator")
	if c.metrics == nil {
		c.metrics = metrics.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Submit validates query, binds it to the active level and appends the user
// turn. Rejections leave every piece of state untouched.
func (c *Coordinator) Submit(query string) (*PendingRequest, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Err: ErrEmptyQuery}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return nil, ErrRequestPending
	}

	level := c.progress.Active()
	prompt, err := c.progress.BoundPromptFor(level)
	if err != nil {
		return nil, &ValidationError{Field: "level", Err: err}
	}

	req := &PendingRequest{
		ID:           uuid.New(),
		QueryText:    query,
		BoundLevelID: level,
		BoundPrompt:  prompt,
		StartedAt:    c.now(),
	}
	c.timeline.AppendUser(query)
	c.state = StatePending
	c.pending = req
	c.parked = nil

	c.logger.Info("request submitted",
		zap.String("request_id", req.ID.String()),
		zap.Int("level_id", level),
		zap.Int("query_len", len(query)))

	out := *req
	return &out, nil
}

// Dispatch performs the remote call for req. It blocks, never touches the
// timeline and is safe to run off the owning goroutine. Failures and panics
// are reported in the Result.
func (c *Coordinator) Dispatch(ctx context.Context, req PendingRequest) (res Result) {
	res.RequestID = req.ID
	start := c.now()
	defer func() {
		if r := recover(); r != nil {
			res.Response = nil
			res.Err = fmt.Errorf("evaluate panicked: %v", r)
		}
		res.Latency = c.now().Sub(start)
	}()

	res.Response, res.Err = c.eval.Evaluate(ctx, evaluator.Request{
		Prompt: req.BoundPrompt + req.QueryText,
		Level:  req.BoundLevelID,
		Query:  req.QueryText,
	})
	return res
}

// Apply reconciles a Result into the timeline. Results for anything other
// than the current request are ignored, as is a second result while an
// answer is parked.
func (c *Coordinator) Apply(res Result) Step {
	step, status := c.apply(res)
	if status != nil && c.opts.OnStatus != nil {
		c.opts.OnStatus(*status)
	}
	return step
}

func (c *Coordinator) apply(res Result) (Step, *timeline.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.ID != res.RequestID {
		c.logger.Debug("stale result ignored", zap.String("request_id", res.RequestID.String()))
		if c.parked != nil {
			return StepHolding, nil
		}
		return StepDone, nil
	}
	if c.parked != nil {
		c.logger.Debug("second result while holding ignored", zap.String("request_id", res.RequestID.String()))
		return StepHolding, nil
	}

	if res.Err != nil || res.Response == nil {
		c.logger.Warn("request failed",
			zap.String("request_id", res.RequestID.String()),
			zap.Int("level_id", c.pending.BoundLevelID),
			zap.Duration("latency", res.Latency),
			zap.Error(res.Err))
		c.finish(FailureMessage, metrics.OutcomeFailure, res.Latency)
		return StepDone, nil
	}

	text := res.Response.Text
	if strings.TrimSpace(text) == "" {
		c.logger.Warn("empty answer", zap.String("request_id", res.RequestID.String()))
		c.finish(FailureMessage, metrics.OutcomeFailure, res.Latency)
		return StepDone, nil
	}

	if tag := statusTag(res.Response); c.opts.StatusSignals && tag != timeline.TagNone {
		turn, err := c.timeline.BeginTransientStatus(tag)
		if err != nil {
			c.logger.Warn("status not shown", zap.String("tag", string(tag)), zap.Error(err))
		} else {
			c.metrics.ObserveStatus(string(tag))
			if c.opts.StatusHold > 0 {
				parked := res
				c.parked = &parked
				return StepHolding, &turn
			}
		}
	}

	c.finish(text, metrics.OutcomeSuccess, res.Latency)
	return StepDone, nil
}

// Resolve replaces the showing status with the parked answer. It reports
// whether there was anything to resolve.
func (c *Coordinator) Resolve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.parked == nil {
		return false
	}
	c.finish(c.parked.Response.Text, metrics.OutcomeSuccess, c.parked.Latency)
	return true
}

// finish appends the bot turn, clearing any status, and returns to Idle.
// Caller holds c.mu.
func (c *Coordinator) finish(text, outcome string, latency time.Duration) {
	c.timeline.ResolveTransientStatus(text)
	c.metrics.ObserveRequest(c.pending.BoundLevelID, outcome, latency)
	c.logger.Info("request resolved",
		zap.String("request_id", c.pending.ID.String()),
		zap.String("outcome", outcome),
		zap.Duration("latency", latency))

	c.state = StateIdle
	c.pending = nil
	c.parked = nil
}

// abandon resolves request id with the failure message if it is somehow
// still outstanding.
func (c *Coordinator) abandon(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.ID != id {
		return
	}
	if c.parked != nil {
		c.finish(c.parked.Response.Text, metrics.OutcomeSuccess, c.parked.Latency)
		return
	}
	c.finish(FailureMessage, metrics.OutcomeFailure, c.now().Sub(c.pending.StartedAt))
}

// Ask runs a whole request synchronously and returns the resolving bot turn.
// Only Submit rejections are returned as errors; remote failures come back
// as the failure turn. A cancelled ctx cuts the status hold short.
func (c *Coordinator) Ask(ctx context.Context, query string) (timeline.Turn, error) {
	req, err := c.Submit(query)
	if err != nil {
		return timeline.Turn{}, err
	}
	defer c.abandon(req.ID)

	if c.Apply(c.Dispatch(ctx, *req)) == StepHolding {
		timer := time.NewTimer(c.opts.StatusHold)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
		c.Resolve()
	}

	durable := c.timeline.Durable()
	return durable[len(durable)-1], nil
}

// State returns the current dwell state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns a copy of the outstanding request, if any.
func (c *Coordinator) Pending() (PendingRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingRequest{}, false
	}
	return *c.pending, true
}

// Holding reports whether an answer is parked behind a status turn.
func (c *Coordinator) Holding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parked != nil
}

// StatusHold returns the configured status hold.
func (c *Coordinator) StatusHold() time.Duration {
	return c.opts.StatusHold
}

// statusTag maps the service flags to a status tag. Web lookup wins when
// both are set.
func statusTag(resp *evaluator.Response) timeline.StatusTag {
	switch {
	case resp.WebLookup:
		return timeline.TagWebLookup
	case resp.Retrieval:
		return timeline.TagRetrieval
	default:
		return timeline.TagNone
	}
}
