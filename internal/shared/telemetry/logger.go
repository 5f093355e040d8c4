package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

var (
	mu     sync.RWMutex
	logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
)

// Setup installs the process logger. Production writes JSON (or exports through
// OTLP when enabled); other environments write human-readable text.
func Setup(env string, otelEnabled bool, serviceName string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env != "production" {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch {
	case env == "production" && otelEnabled:
		handler = otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	case env == "production":
		handler = traceHandler{slog.NewJSONHandler(os.Stdout, opts)}
	default:
		handler = traceHandler{slog.NewTextHandler(os.Stdout, opts)}
	}
	set(slog.New(handler))
}

// SetOutput routes JSON log lines to w. Used by tests and CLIs.
func SetOutput(w io.Writer) {
	set(slog.New(slog.NewJSONHandler(w, nil)))
}

func set(l *slog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Logger returns the current process logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(context.Background(), slog.LevelInfo, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(context.Background(), slog.LevelWarn, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(context.Background(), slog.LevelError, msg, fields)
}

// InfoContext is Info with trace correlation from ctx.
func InfoContext(ctx context.Context, msg string, fields map[string]any) {
	write(ctx, slog.LevelInfo, msg, fields)
}

// ErrorContext is Error with trace correlation from ctx.
func ErrorContext(ctx context.Context, msg string, fields map[string]any) {
	write(ctx, slog.LevelError, msg, fields)
}

func write(ctx context.Context, level slog.Level, msg string, fields map[string]any) {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}
	Logger().LogAttrs(ctx, level, msg, attrs...)
}

// traceHandler adds trace/span ids from the context to every record.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}
