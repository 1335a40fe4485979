package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/coordinator"
)

// evalDoneMsg carries the result of a dispatched request.
type evalDoneMsg struct {
	Result coordinator.Result
}

// statusHoldDoneMsg ends the status hold for request ID.
type statusHoldDoneMsg struct {
	ID uuid.UUID
}

// spinnerTickMsg animates the in-flight indicator.
type spinnerTickMsg time.Time

// selectLevelMsg is emitted by the sidebar.
type selectLevelMsg struct {
	ID int
}
