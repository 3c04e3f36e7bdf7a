package scoreline

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger is the minimal structured logging interface the client uses.
// Arguments follow the slog convention of alternating keys and values.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

// NewDefaultLogger returns a text slog logger writing to stderr.
func NewDefaultLogger() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))}
}

func (s *slogLogger) Debug(msg string, keysAndValues ...any) { s.l.Debug(msg, keysAndValues...) }
func (s *slogLogger) Info(msg string, keysAndValues ...any)  { s.l.Info(msg, keysAndValues...) }
func (s *slogLogger) Warn(msg string, keysAndValues ...any)  { s.l.Warn(msg, keysAndValues...) }
func (s *slogLogger) Error(msg string, keysAndValues ...any) { s.l.Error(msg, keysAndValues...) }

// nopLogger discards everything. It is the default so that log calls never
// need nil checks.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// DebugConfig gates per-area debug logging.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogRetries   bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig enables all areas with UUID request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      true,
		LogRequests:  true,
		LogRetries:   true,
		LogCache:     true,
		RequestIDGen: uuid.NewString,
	}
}

func (d *DebugConfig) logRequests() bool {
	return d != nil && d.Enabled && d.LogRequests
}

func (d *DebugConfig) logRetries() bool {
	return d != nil && d.Enabled && d.LogRetries
}

func (d *DebugConfig) logCache() bool {
	return d != nil && d.Enabled && d.LogCache
}

func (d *DebugConfig) requestID() string {
	if d == nil || d.RequestIDGen == nil {
		return ""
	}
	return d.RequestIDGen()
}
