package evaluator

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryConfig configures retries of read-only calls.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns three attempts backing off from 200ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 200 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryingService retries ChatHistory and FetchArtifact on transient
// failures with exponential backoff and jitter. Evaluate and Summarize are
// passed through untouched: each has side effects on the service and a
// failure there is reported to the user as is.
type RetryingService struct {
	inner  Service
	config RetryConfig
}

// WithRetry wraps s with retry logic for its read-only calls.
func WithRetry(s Service, cfg RetryConfig) Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingService{inner: s, config: cfg}
}

func (r *RetryingService) Evaluate(ctx context.Context, req Request) (*Response, error) {
	return r.inner.Evaluate(ctx, req)
}

func (r *RetryingService) Summarize(ctx context.Context, history []HistoryEntry) (string, error) {
	return r.inner.Summarize(ctx, history)
}

func (r *RetryingService) ChatHistory(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.ChatHistory(ctx)
		return err
	})
	return out, err
}

func (r *RetryingService) FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := r.do(ctx, func() error {
		var err error
		body, err = r.inner.FetchArtifact(ctx, name)
		return err
	})
	return body, err
}

func (r *RetryingService) do(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := range r.config.MaxAttempts {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
	return lastErr
}

// retryable reports whether err is worth another attempt: transport
// failures and 5xx answers are, client errors and bad bodies are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var svc *ServiceError
	if errors.As(err, &svc) {
		return svc.StatusCode >= http.StatusInternalServerError
	}
	var transport *TransportError
	return errors.As(err, &transport)
}

func (r *RetryingService) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
