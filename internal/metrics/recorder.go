// Package metrics records request and export outcomes.
package metrics

import "time"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder records client-side metrics.
type Recorder interface {
	// ObserveRequest records a finished evaluation request.
	ObserveRequest(level int, outcome string, d time.Duration)

	// ObserveStatus counts a transient status shown to the user.
	ObserveStatus(tag string)

	// ObserveExport records a finished export job.
	ObserveExport(outcome string, d time.Duration)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

// Nop returns a Recorder that discards all metrics.
func Nop() Recorder {
	return NoopRecorder{}
}

func (NoopRecorder) ObserveRequest(int, string, time.Duration) {}
func (NoopRecorder) ObserveStatus(string)                      {}
func (NoopRecorder) ObserveExport(string, time.Duration)       {}
