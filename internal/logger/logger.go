// Package logger provides a structured logging abstraction backed by either
// log/slog or zap.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

// Level is a log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// ParseLevel maps a config string to a Level. Unknown values are info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Day logs a calendar date as YYYY-MM-DD
func Day(key string, t time.Time) Field {
	return Field{Key: key, Value: t.Format(time.DateOnly)}
}

// Err logs err under "error"; a nil error logs null
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Logger is implemented by the slog and zap backends
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger
	// WithContext returns a child logger carrying the request and user ids
	// found in ctx
	WithContext(ctx context.Context) Logger

	Level() Level
}

// Supported backends
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// Config holds logging configuration
type Config struct {
	Level Level
	// Format is "json" or "text"
	Format string
	// Backend is "slog" or "zap"
	Backend string
	// AddSource adds file:line to entries
	AddSource bool
	// Output defaults to os.Stdout
	Output io.Writer
}

// DefaultConfig is JSON at info level on slog
func DefaultConfig() Config {
	return Config{
		Level:   LevelInfo,
		Format:  "json",
		Backend: BackendSlog,
	}
}

// New builds a Logger for cfg.Backend
func New(cfg Config) (Logger, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendSlog:
		return NewSlogLogger(cfg), nil
	case BackendZap:
		return NewZapLogger(cfg)
	default:
		return nil, fmt.Errorf("unknown log backend %q", cfg.Backend)
	}
}

// Keys whose values never reach the output in clear text
var redactedKeys = map[string]bool{
	"authorization": true,
	"password":      true,
	"service_key":   true,
	"token":         true,
	"apikey":        true,
}

const redactedValue = "[REDACTED]"

func isRedacted(key string) bool {
	return redactedKeys[strings.ToLower(key)]
}

var defaultLogger atomic.Pointer[Logger]

// SetDefault replaces the process-wide logger
func SetDefault(l Logger) {
	defaultLogger.Store(&l)
}

// Default returns the process-wide logger, creating a JSON slog logger at
// info level on first use.
func Default() Logger {
	if l := defaultLogger.Load(); l != nil {
		return *l
	}
	l := NewSlogLogger(DefaultConfig())
	defaultLogger.CompareAndSwap(nil, &l)
	return *defaultLogger.Load()
}

// Warn logs through the default logger
func Warn(msg string, fields ...Field) { Default().Warn(msg, fields...) }
