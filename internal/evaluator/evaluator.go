// Package evaluator is the client side of the remote leadership-evaluation
// service: answer evaluation, chat history, summarization and artifact
// retrieval.
package evaluator

import (
	"context"
	"fmt"
	"io"
)

// Mode selects how evaluation requests are encoded on the wire.
type Mode string

const (
	// ModeJSON posts {"prompt", "level"} to /evaluate.
	ModeJSON Mode = "json"

	// ModeQuery sends the raw query text to /search as a query parameter.
	ModeQuery Mode = "query"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeJSON, ModeQuery:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown request mode %q (want %q or %q)", s, ModeJSON, ModeQuery)
	}
}

// Request is one evaluation call.
type Request struct {
	// Prompt is the bound prompt followed by the query text. Sent in JSON mode.
	Prompt string

	// Level is the level the prompt was bound from.
	Level int

	// Query is the raw user text. Sent in query mode.
	Query string
}

// Response is the terminal answer of an evaluation call.
type Response struct {
	Text string

	// WebLookup and Retrieval are advisory display hints reported by the
	// service alongside the answer.
	WebLookup bool
	Retrieval bool
}

// HasSignal reports whether the service flagged any in-progress operation.
func (r *Response) HasSignal() bool {
	return r.WebLookup || r.Retrieval
}

// Role is the speaker of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry is the wire shape of one conversation turn.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Evaluator answers queries against a bound prompt.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (*Response, error)
}

// Summarizer turns a conversation into a downloadable artifact.
type Summarizer interface {
	// Summarize returns the identifier of the generated artifact.
	Summarize(ctx context.Context, history []HistoryEntry) (string, error)

	// FetchArtifact opens the artifact body. Callers must close it.
	FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error)
}

// HistorySource returns the conversation as recorded by the service.
type HistorySource interface {
	ChatHistory(ctx context.Context) ([]HistoryEntry, error)
}

// Service is everything the client consumes from the remote side.
type Service interface {
	Evaluator
	Summarizer
	HistorySource
}
