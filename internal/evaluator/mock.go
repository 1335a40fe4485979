package evaluator

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MockResponse is a canned evaluation result for MockService.
type MockResponse struct {
	Response Response
	Err      error
}

// MockArtifact is a canned artifact fetch result.
type MockArtifact struct {
	Data []byte
	Err  error
}

// MockSummary is a canned summarize result.
type MockSummary struct {
	Filename string
	Err      error
}

// MockService is a deterministic Service for tests. Each call kind pops
// its own FIFO queue; calls are recorded.
type MockService struct {
	mu        sync.Mutex
	responses []MockResponse
	summaries []MockSummary
	artifacts []MockArtifact
	History   []HistoryEntry
	HistErr   error

	Calls          []Request
	SummarizeCalls [][]HistoryEntry
	FetchCalls     []string
	bodies         []*trackedBody
}

// NewMockService creates a MockService with the given evaluation responses.
func NewMockService(responses ...MockResponse) *MockService {
	return &MockService{responses: responses}
}

// Evaluate returns the next canned response, or a TransportError when the
// queue is empty.
func (m *MockService) Evaluate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return nil, &TransportError{Op: "evaluate", Err: io.ErrUnexpectedEOF}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	resp := next.Response
	return &resp, nil
}

func (m *MockService) ChatHistory(context.Context) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HistErr != nil {
		return nil, m.HistErr
	}
	return append([]HistoryEntry(nil), m.History...), nil
}

func (m *MockService) Summarize(_ context.Context, history []HistoryEntry) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SummarizeCalls = append(m.SummarizeCalls, append([]HistoryEntry(nil), history...))
	if len(m.summaries) == 0 {
		return "", &TransportError{Op: "summarize", Err: io.ErrUnexpectedEOF}
	}
	next := m.summaries[0]
	m.summaries = m.summaries[1:]
	return next.Filename, next.Err
}

func (m *MockService) FetchArtifact(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls = append(m.FetchCalls, name)
	if len(m.artifacts) == 0 {
		return nil, &TransportError{Op: "fetch artifact", Err: io.ErrUnexpectedEOF}
	}
	next := m.artifacts[0]
	m.artifacts = m.artifacts[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	body := &trackedBody{Reader: bytes.NewReader(next.Data)}
	m.bodies = append(m.bodies, body)
	return body, nil
}

// AddResponse appends a canned evaluation response.
func (m *MockService) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// AddSummary appends a canned summarize result.
func (m *MockService) AddSummary(s MockSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, s)
}

// AddArtifact appends a canned artifact fetch result.
func (m *MockService) AddArtifact(a MockArtifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, a)
}

// CallCount returns the number of Evaluate calls made.
func (m *MockService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// OpenBodies returns how many artifact bodies handed out are still open.
func (m *MockService) OpenBodies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bodies {
		if !b.isClosed() {
			n++
		}
	}
	return n
}

type trackedBody struct {
	*bytes.Reader
	mu     sync.Mutex
	closed bool
}

func (b *trackedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *trackedBody) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
