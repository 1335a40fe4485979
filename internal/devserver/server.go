// Package devserver is a local stand-in for the remote evaluation service.
// It speaks the same HTTP contract with deterministic answers so the client
// can be exercised without the real backend.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/SaiNivedh26/Ignite-Chatbot/internal/catalog"
	"github.com/SaiNivedh26/Ignite-Chatbot/internal/evaluator"
)

// Server holds the in-memory state of one dev service instance.
type Server struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	logger    *zap.Logger
	history   []evaluator.HistoryEntry
	artifacts map[string][]byte
	seq       int
}

// New creates a Server answering for the levels in c.
func New(c *catalog.Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:   c,
		logger:    logger.Named("devserver"),
		artifacts: make(map[string][]byte),
	}
}

// Routes returns the service router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/evaluate", s.handleEvaluate)
	r.Get("/search", s.handleSearch)
	r.Get("/chat-history", s.handleChatHistory)
	r.Post("/summarize-chat", s.handleSummarize)
	r.Get("/get-pdf/{filename}", s.handleGetPDF)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dev service listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("dev service shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type evaluateRequest struct {
	Prompt string `json:"prompt"`
	Level  int    `json:"level"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Detail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	level, err := s.catalog.Get(req.Level)
	if err != nil {
		Detail(w, http.StatusBadRequest, fmt.Sprintf("unknown level %d", req.Level))
		return
	}
	query := strings.TrimSpace(strings.TrimPrefix(req.Prompt, level.PromptTemplate))
	if query == "" {
		Detail(w, http.StatusBadRequest, "prompt is required")
		return
	}
	s.respond(w, level, query)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		Detail(w, http.StatusBadRequest, "query is required")
		return
	}
	s.respond(w, s.catalog.First(), query)
}

func (s *Server) respond(w http.ResponseWriter, level catalog.Level, query string) {
	a := Answer(level, query)

	s.mu.Lock()
	s.history = append(s.history,
		evaluator.HistoryEntry{Role: evaluator.RoleUser, Content: query},
		evaluator.HistoryEntry{Role: evaluator.RoleAssistant, Content: a.Text},
	)
	s.mu.Unlock()

	if !a.WebLookup && !a.Retrieval {
		JSON(w, http.StatusOK, map[string]any{"response": a.Text})
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"message":      a.Text,
		"webscraping":  a.WebLookup,
		"ragRetrieval": a.Retrieval,
	})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	history := append([]evaluator.HistoryEntry{}, s.history...)
	s.mu.Unlock()

	JSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatHistory []evaluator.HistoryEntry `json:"chat_history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Detail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ChatHistory) == 0 {
		Detail(w, http.StatusBadRequest, "no content")
		return
	}

	doc := RenderPDF("Conversation summary", SummaryLines(req.ChatHistory))

	s.mu.Lock()
	s.seq++
	name := fmt.Sprintf("chat_summary_%d.pdf", s.seq)
	s.artifacts[name] = doc
	s.mu.Unlock()

	s.logger.Info("summary generated", zap.String("artifact", name), zap.Int("entries", len(req.ChatHistory)))
	JSON(w, http.StatusOK, map[string]string{"pdf_filename": name})
}

func (s *Server) handleGetPDF(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	s.mu.Lock()
	doc, ok := s.artifacts[name]
	s.mu.Unlock()

	if !ok {
		Detail(w, http.StatusNotFound, "PDF not found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(doc)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"detail": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Detail writes an error response in the service's {"detail": ...} shape.
func Detail(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, map[string]string{"detail": detail})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		})
	}
}
