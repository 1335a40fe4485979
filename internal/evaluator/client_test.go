package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(append([]Option{WithBaseURL(server.URL)}, opts...)...)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, ModeJSON, c.Mode())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("json")
	require.NoError(t, err)
	assert.Equal(t, ModeJSON, m)

	_, err = ParseMode("grpc")
	assert.Error(t, err)
}

func TestEvaluate_QueryMode(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(`{"message":"ok","webscraping":true,"ragRetrieval":false}`))
	}, WithMode(ModeQuery))

	resp, err := c.Evaluate(context.Background(), Request{Prompt: "ignored", Level: 2, Query: "we should cut costs"})
	require.NoError(t, err)
	assert.Equal(t, "we should cut costs", gotQuery)
	assert.Equal(t, "ok", resp.Text)
	assert.True(t, resp.WebLookup)
	assert.False(t, resp.Retrieval)
	assert.True(t, resp.HasSignal())
}

func TestEvaluate_JSONMode(t *testing.T) {
	var body evaluateBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/evaluate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"response":"Consider long-term impact."}`))
	})

	resp, err := c.Evaluate(context.Background(), Request{Prompt: "Argument: cut costs", Level: 1, Query: "cut costs"})
	require.NoError(t, err)
	assert.Equal(t, evaluateBody{Prompt: "Argument: cut costs", Level: 1}, body)
	assert.Equal(t, "Consider long-term impact.", resp.Text)
	assert.False(t, resp.HasSignal())
}

func TestEvaluate_ResponseTakesPrecedenceOverMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"primary","message":"secondary"}`))
	})
	resp, err := c.Evaluate(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
}

func TestEvaluate_InvalidShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no text field", `{"webscraping":true}`},
		{"wrong type", `{"response":42}`},
		{"not json", `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Evaluate(context.Background(), Request{Query: "q"})
			var invalid *InvalidResponseError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, "evaluate", invalid.Op)
		})
	}
}

func TestEvaluate_ServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"upstream model unavailable"}`))
	})
	_, err := c.Evaluate(context.Background(), Request{Query: "q"})

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, http.StatusBadGateway, svc.StatusCode)
	assert.Equal(t, "upstream model unavailable", svc.Detail)
	assert.Equal(t, "upstream model unavailable", Reason(err, "fallback"))
}

func TestEvaluate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(WithBaseURL(url))
	_, err := c.Evaluate(context.Background(), Request{Query: "q"})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "fallback", Reason(err, "fallback"))
}

func TestEvaluate_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond))
	defer close(release)

	_, err := c.Evaluate(context.Background(), Request{Query: "q"})
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestChatHistory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat-history", r.URL.Path)
		_, _ = w.Write([]byte(`{"history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]}`))
	})
	history, err := c.ChatHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []HistoryEntry{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, history)
}

func TestChatHistory_BadRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"history":[{"role":"system","content":"x"}]}`))
	})
	_, err := c.ChatHistory(context.Background())
	var invalid *InvalidResponseError
	assert.ErrorAs(t, err, &invalid)
}

func TestSummarize(t *testing.T) {
	var got struct {
		ChatHistory []HistoryEntry `json:"chat_history"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/summarize-chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"pdf_filename":"summary_123.pdf"}`))
	})

	history := []HistoryEntry{{Role: RoleUser, Content: "q"}, {Role: RoleAssistant, Content: "a"}}
	name, err := c.Summarize(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "summary_123.pdf", name)
	assert.Equal(t, history, got.ChatHistory)
}

func TestSummarize_Failures(t *testing.T) {
	t.Run("detail", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"no content"}`))
		})
		_, err := c.Summarize(context.Background(), nil)
		assert.Equal(t, "no content", Reason(err, "Failed to generate summary"))
	})

	t.Run("missing filename", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"pdf_filename":""}`))
		})
		_, err := c.Summarize(context.Background(), nil)
		var invalid *InvalidResponseError
		assert.ErrorAs(t, err, &invalid)
	})
}

func TestFetchArtifact(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get-pdf/summary 1.pdf", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	body, err := c.FetchArtifact(context.Background(), "summary 1.pdf")
	require.NoError(t, err)
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestFetchArtifact_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"PDF not found"}`))
	})
	_, err := c.FetchArtifact(context.Background(), "missing.pdf")

	var svc *ServiceError
	require.ErrorAs(t, err, &svc)
	assert.Equal(t, "PDF not found", svc.Detail)
	assert.False(t, errors.Is(err, io.EOF))
}
