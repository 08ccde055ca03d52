// Package logging provides leveled logging and step tracing for coheron.
// It offers two complementary outputs:
//   - A leveled zap.Logger for stderr (operational output)
//   - A StepTracer for structured JSONL step traces (<dir>/steps.jsonl)
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelTrace is a custom zap level below Debug for per-step detail such as
// observations, gradients and control laws.
const LevelTrace = zapcore.DebugLevel - 1

// TracesFile is the file name StepTracer writes inside its directory.
const TracesFile = "steps.jsonl"

// ParseLevel maps a level name to a zap level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "trace":
		return LevelTrace
	default:
		return zapcore.InfoLevel
	}
}

// encodeLevel labels the custom trace level and defers to the capital
// encoder for the rest.
func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == LevelTrace {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// NewLogger creates a leveled console logger writing to w.
func NewLogger(level string, w io.Writer) *zap.Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = encodeLevel
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(ParseLevel(level)),
	)
	return zap.New(core)
}

// Trace logs msg at LevelTrace. A nil logger is ignored.
func Trace(logger *zap.Logger, msg string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	if ce := logger.Check(LevelTrace, msg); ce != nil {
		ce.Write(fields...)
	}
}

// StepTracer writes structured step events to a JSONL file.
// It is safe for concurrent use. A nil StepTracer is safe to use;
// all methods are no-ops on nil receiver.
type StepTracer struct {
	mu     sync.Mutex
	file   *os.File
	logger *zap.Logger
}

// NewStepTracer creates a tracer writing to dir/steps.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewStepTracer(dir string, level string) *StepTracer {
	if ParseLevel(level) == zapcore.InfoLevel {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, TracesFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "event"
	cfg.LevelKey = zapcore.OmitKey
	cfg.CallerKey = zapcore.OmitKey
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(f), LevelTrace)
	return &StepTracer{file: f, logger: zap.New(core)}
}

// Log writes one event as a single JSONL line with a "time" field added.
// Safe to call on nil receiver.
func (st *StepTracer) Log(event string, fields ...zap.Field) {
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.file == nil {
		return
	}
	st.logger.Info(event, fields...)
}

// Close flushes and closes the underlying file. Safe to call on nil receiver.
func (st *StepTracer) Close() {
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.file == nil {
		return
	}
	_ = st.logger.Sync()
	st.file.Close()
	st.file = nil
}
