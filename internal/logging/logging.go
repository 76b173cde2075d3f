package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields carries structured context for a log entry.
type Fields map[string]interface{}

// LoggerV2 is a named structured logger backed by zap.
type LoggerV2 struct {
	name string
	zl   *zap.Logger
}

var base = newBase()

func newBase() *zap.Logger {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(strings.ToLower(os.Getenv("LOG_LEVEL")))); err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// NewLoggerV2 creates a logger tagged with the given component name.
func NewLoggerV2(name string) *LoggerV2 {
	return &LoggerV2{
		name: name,
		zl:   base.Named(name),
	}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *LoggerV2 {
	return &LoggerV2{name: "nop", zl: zap.NewNop()}
}

// With returns a child logger that always carries the given fields.
func (l *LoggerV2) With(fields Fields) *LoggerV2 {
	return &LoggerV2{name: l.name, zl: l.zl.With(toZap(fields)...)}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.zl.Debug(msg, toZap(fields...)...)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.zl.Info(msg, toZap(fields...)...)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.zl.Warn(msg, toZap(fields...)...)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.zl.Error(msg, toZap(fields...)...)
}

// Fatal logs and exits the process.
func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.zl.Fatal(msg, toZap(fields...)...)
}

// Sync flushes buffered entries.
func (l *LoggerV2) Sync() error {
	return l.zl.Sync()
}

// Infof logs a formatted message on the process-wide logger.
func Infof(format string, args ...interface{}) {
	base.Sugar().Infof(format, args...)
}

// Info logs on the process-wide logger.
func Info(msg string, fields ...Fields) {
	base.Info(msg, toZap(fields...)...)
}

func toZap(fields ...Fields) []zap.Field {
	var out []zap.Field
	for _, f := range fields {
		keys := make([]string, 0, len(f))
		for k := range f {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch v := f[k].(type) {
			case error:
				out = append(out, zap.NamedError(k, v))
			case fmt.Stringer:
				out = append(out, zap.Stringer(k, v))
			default:
				out = append(out, zap.Any(k, v))
			}
		}
	}
	return out
}

type requestIDKey struct{}

// ContextWithRequestID stores the request id used to correlate logs and events.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id, or "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
