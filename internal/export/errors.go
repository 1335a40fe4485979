package export

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyConversation is returned when there is nothing to export.
	ErrEmptyConversation = errors.New("conversation is empty")

	// ErrExportRunning is returned while another export is in flight.
	ErrExportRunning = errors.New("an export is already running")

	// ErrEmptyArtifact marks an artifact that arrived with no bytes.
	ErrEmptyArtifact = errors.New("artifact is empty")

	// ErrArtifactTooLarge marks an artifact over the configured size limit.
	ErrArtifactTooLarge = errors.New("artifact exceeds size limit")
)

// Fallback reasons when the service sends no detail.
const (
	ReasonSummarize  = "Failed to generate summary"
	ReasonNoFilename = "No PDF filename received from server"
	ReasonDownload   = "Failed to download PDF"
	ReasonEmpty      = "Generated PDF is empty"
	ReasonTooLarge   = "Generated PDF is too large"
	ReasonDeliver    = "Failed to save PDF"
)

// PhaseError is the failure of one export phase. Reason is what the user
// sees; it is the service detail when one was sent.
type PhaseError struct {
	Phase  Phase
	Reason string
	Err    error
}

func (e *PhaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export %s: %s: %v", e.Phase, e.Reason, e.Err)
	}
	return fmt.Sprintf("export %s: %s", e.Phase, e.Reason)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// UserMessage formats the failure for display.
func (e *PhaseError) UserMessage() string {
	return fmt.Sprintf("Export failed: %s. Please try again.", e.Reason)
}
