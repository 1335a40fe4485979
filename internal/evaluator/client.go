package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
)

// Client is the HTTP implementation of Service.
type Client struct {
	baseURL    string
	mode       Mode
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the service base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithMode selects the evaluation request encoding.
func WithMode(m Mode) Option {
	return func(c *Client) { c.mode = m }
}

// WithTimeout bounds every call, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left
// untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client. Defaults: DefaultBaseURL, ModeJSON,
// DefaultTimeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		mode:    ModeJSON,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Mode returns the evaluation request encoding.
func (c *Client) Mode() Mode { return c.mode }

type evaluateBody struct {
	Prompt string `json:"prompt"`
	Level  int    `json:"level"`
}

type evaluatePayload struct {
	Response     string `json:"response"`
	Message      string `json:"message"`
	Webscraping  bool   `json:"webscraping"`
	RagRetrieval bool   `json:"ragRetrieval"`
}

// Evaluate sends one evaluation request.
func (c *Client) Evaluate(ctx context.Context, req Request) (*Response, error) {
	const op = "evaluate"

	var (
		httpReq *http.Request
		err     error
	)
	switch c.mode {
	case ModeJSON:
		httpReq, err = c.newJSONRequest(ctx, http.MethodPost, "/evaluate", evaluateBody{
			Prompt: req.Prompt,
			Level:  req.Level,
		})
	default:
		q := url.Values{"query": {req.Query}}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	}
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	raw, err := c.do(op, httpReq)
	if err != nil {
		return nil, err
	}
	if err := validateBody(op, schemaEvaluate, raw); err != nil {
		return nil, err
	}

	var payload evaluatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &InvalidResponseError{Op: op, Body: raw, Err: err}
	}

	text := payload.Response
	if text == "" {
		text = payload.Message
	}
	return &Response{
		Text:      text,
		WebLookup: payload.Webscraping,
		Retrieval: payload.RagRetrieval,
	}, nil
}

// ChatHistory fetches the conversation as the service recorded it.
func (c *Client) ChatHistory(ctx context.Context) ([]HistoryEntry, error) {
	const op = "chat history"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/chat-history", nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	raw, err := c.do(op, httpReq)
	if err != nil {
		return nil, err
	}
	if err := validateBody(op, schemaHistory, raw); err != nil {
		return nil, err
	}

	var payload struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &InvalidResponseError{Op: op, Body: raw, Err: err}
	}
	return payload.History, nil
}

// Summarize asks the service to summarize history and returns the
// generated artifact's filename.
func (c *Client) Summarize(ctx context.Context, history []HistoryEntry) (string, error) {
	const op = "summarize"

	if history == nil {
		history = []HistoryEntry{}
	}
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, "/summarize-chat", struct {
		ChatHistory []HistoryEntry `json:"chat_history"`
	}{history})
	if err != nil {
		return "", &TransportError{Op: op, Err: err}
	}

	raw, err := c.do(op, httpReq)
	if err != nil {
		return "", err
	}
	if err := validateBody(op, schemaSummarize, raw); err != nil {
		return "", err
	}

	var payload struct {
		PDFFilename string `json:"pdf_filename"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &InvalidResponseError{Op: op, Body: raw, Err: err}
	}
	return payload.PDFFilename, nil
}

// FetchArtifact opens the artifact body for streaming. The caller owns the
// returned ReadCloser.
func (c *Client) FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "fetch artifact"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-pdf/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return nil, serviceError(op, resp.StatusCode, body)
	}
	return resp.Body, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do executes req and returns the full success body.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serviceError(op, resp.StatusCode, body)
	}
	return body, nil
}

// serviceError extracts the "detail" field the service sends with failures.
func serviceError(op string, status int, body []byte) *ServiceError {
	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)
	return &ServiceError{Op: op, StatusCode: status, Detail: payload.Detail}
}
