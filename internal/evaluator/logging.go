package evaluator

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

// LoggingService is a decorator that logs every remote call.
type LoggingService struct {
	inner  Service
	logger *zap.Logger
}

// WithLogging wraps a Service with structured call logging.
func WithLogging(s Service, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingService{inner: s, logger: logger.Named("evaluator")}
}

func (l *LoggingService) Evaluate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Evaluate(ctx, req)

	fields := []zap.Field{
		zap.Int("level_id", req.Level),
		zap.Int("query_len", len(req.Query)),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		l.logger.Warn("evaluate failed", append(fields, zap.Error(err))...)
		return resp, err
	}
	l.logger.Info("evaluate",
		append(fields,
			zap.Int("answer_len", len(resp.Text)),
			zap.Bool("web_lookup", resp.WebLookup),
			zap.Bool("retrieval", resp.Retrieval),
		)...)
	return resp, nil
}

func (l *LoggingService) ChatHistory(ctx context.Context) ([]HistoryEntry, error) {
	start := time.Now()
	history, err := l.inner.ChatHistory(ctx)
	if err != nil {
		l.logger.Warn("chat history failed", zap.Duration("latency", time.Since(start)), zap.Error(err))
		return history, err
	}
	l.logger.Info("chat history", zap.Int("entries", len(history)), zap.Duration("latency", time.Since(start)))
	return history, nil
}

func (l *LoggingService) Summarize(ctx context.Context, history []HistoryEntry) (string, error) {
	start := time.Now()
	name, err := l.inner.Summarize(ctx, history)
	if err != nil {
		l.logger.Warn("summarize failed",
			zap.Int("entries", len(history)),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return name, err
	}
	l.logger.Info("summarize",
		zap.Int("entries", len(history)),
		zap.String("artifact", name),
		zap.Duration("latency", time.Since(start)))
	return name, nil
}

func (l *LoggingService) FetchArtifact(ctx context.Context, name string) (io.ReadCloser, error) {
	start := time.Now()
	body, err := l.inner.FetchArtifact(ctx, name)
	if err != nil {
		l.logger.Warn("fetch artifact failed",
			zap.String("artifact", name),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return body, err
	}
	l.logger.Info("fetch artifact", zap.String("artifact", name), zap.Duration("latency", time.Since(start)))
	return body, nil
}
