// Package logging provides structured logging with zap. Logs go to stderr
// by default because the stdio tool transport owns stdout.
package logging

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	globalLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// fallback is built on first use when nothing was installed by Init.
	fallback     *zap.Logger
	fallbackOnce sync.Once
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	OutputPath string // stderr, stdout, or file path
}

// Init initializes the global logger.
func Init(cfg Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var config zap.Config
	if cfg.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}

	globalLevel.SetLevel(level)
	config.Level = globalLevel
	out := cfg.OutputPath
	if out == "" {
		out = "stderr"
	}
	config.OutputPaths = []string{out}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	globalLogger.Store(logger)
	return nil
}

// defaultLogger is a console logger on stderr sharing the global level.
func defaultLogger() *zap.Logger {
	fallbackOnce.Do(func() {
		config := zap.NewDevelopmentConfig()
		config.Level = globalLevel
		config.OutputPaths = []string{"stderr"}
		config.DisableStacktrace = true
		logger, err := config.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		fallback = logger
	})
	return fallback
}

// Replace swaps the global logger, mainly for tests. It returns a function
// restoring the previous one. A nil logger falls back to the default.
func Replace(l *zap.Logger) func() {
	prev := globalLogger.Swap(l)
	return func() { globalLogger.Store(prev) }
}

// Sync flushes any buffered log entries.
func Sync() error {
	if l := globalLogger.Load(); l != nil {
		return l.Sync()
	}
	return nil
}

// L returns the global logger, or the default console logger before Init.
// Safe for concurrent use.
func L() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return defaultLogger()
}

// WithContext returns a logger from context, or the global logger.
func WithContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
			return logger
		}
	}
	return L()
}

// WithRequestID adds a request ID to the logger and returns a new context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	logger := WithContext(ctx).With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return context.WithValue(ctx, loggerKey, logger)
}

// GetRequestID returns the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
