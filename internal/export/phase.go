package export

import "fmt"

// Phase is the state of an export job.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSummarizing
	PhaseFetchingArtifact
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseFetchingArtifact:
		return "fetchingArtifact"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Terminal reports whether p ends a job.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Busy reports whether a job in phase p blocks a new run.
func (p Phase) Busy() bool {
	return p == PhaseSummarizing || p == PhaseFetchingArtifact
}
