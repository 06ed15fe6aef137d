package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// OTELHandler wraps a slog.Handler and adds trace_id / span_id when the context carries a span.
type OTELHandler struct {
	slog.Handler
}

func NewOTELHandler(h slog.Handler) *OTELHandler {
	return &OTELHandler{Handler: h}
}

func (h *OTELHandler) Handle(ctx context.Context, r slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *OTELHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &OTELHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *OTELHandler) WithGroup(name string) slog.Handler {
	return &OTELHandler{Handler: h.Handler.WithGroup(name)}
}

// NewLogger returns a JSON logger at the given level ("debug", "info", "warn", "error").
func NewLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(NewOTELHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})))
}
