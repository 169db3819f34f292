// Package logging builds the process slog logger and, when an OTLP collector is
// configured, the OpenTelemetry log and trace providers behind it.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"marketplace/internal/config"
	"marketplace/internal/logsink"
)

// Shutdown flushes and closes everything New opened.
type Shutdown func(context.Context) error

// New returns a logger writing JSON to w, or to cfg.Logging.File when set. An OTLP
// endpoint adds an exporter for logs and installs a global trace provider; the exporters
// read OTEL_EXPORTER_OTLP_* themselves. BlobSink adds an append blob copy.
func New(ctx context.Context, cfg *config.Config, w io.Writer) (*slog.Logger, Shutdown, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	var closers []Shutdown
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, func(context.Context) error { return f.Close() })
		w = f
	}
	handlers := []slog.Handler{slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})}

	if cfg.Logging.OTLPEndpoint != "" {
		h, closeOTel, err := setupOTel(ctx, cfg.Logging.ServiceName)
		if err != nil {
			_ = shutdown(ctx)
			return nil, nil, err
		}
		closers = append(closers, closeOTel)
		handlers = append(handlers, leveled{Handler: h, level: level})
	}

	if cfg.Logging.BlobSink {
		sink, err := logsink.New(ctx, logsink.Config{
			AccountName: cfg.Azure.AccountName,
			AccountKey:  cfg.Azure.AccountKey,
			Container:   cfg.Azure.LogContainer,
			Level:       level,
		})
		if err != nil {
			_ = shutdown(ctx)
			return nil, nil, fmt.Errorf("create blob log sink: %w", err)
		}
		closers = append(closers, func(context.Context) error { return sink.Close() })
		handlers = append(handlers, sink)
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), shutdown, nil
	}
	return slog.New(fanout(handlers)), shutdown, nil
}

// Setup is New plus slog.SetDefault.
func Setup(ctx context.Context, cfg *config.Config, w io.Writer) (Shutdown, error) {
	logger, shutdown, err := New(ctx, cfg, w)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return shutdown, nil
}

func setupOTel(ctx context.Context, service string) (slog.Handler, Shutdown, error) {
	res := resource.NewSchemaless(attribute.String("service.name", service))

	logExp, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp log exporter: %w", err)
	}
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		sdklog.WithResource(res),
	)

	traceExp, err := otlptracehttp.New(ctx)
	if err != nil {
		_ = lp.Shutdown(ctx)
		return nil, nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), lp.Shutdown(ctx))
	}
	return otelslog.NewHandler(service, otelslog.WithLoggerProvider(lp)), shutdown, nil
}

// leveled puts a minimum level in front of a handler that has none of its own.
type leveled struct {
	slog.Handler
	level slog.Level
}

func (l leveled) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= l.level && l.Handler.Enabled(ctx, level)
}

func (l leveled) WithAttrs(attrs []slog.Attr) slog.Handler {
	return leveled{Handler: l.Handler.WithAttrs(attrs), level: l.level}
}

func (l leveled) WithGroup(name string) slog.Handler {
	return leveled{Handler: l.Handler.WithGroup(name), level: l.level}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
