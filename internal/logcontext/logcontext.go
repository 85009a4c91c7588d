package logcontext

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var slogFields ctxKey

// AppendCtx returns a context carrying the given attrs in addition to any
// attrs already present on the parent.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if existing, ok := parent.Value(slogFields).([]slog.Attr); ok {
		combined := make([]slog.Attr, 0, len(existing)+len(attrs))
		combined = append(combined, existing...)
		combined = append(combined, attrs...)
		return context.WithValue(parent, slogFields, combined)
	}

	return context.WithValue(parent, slogFields, attrs)
}

// Attrs extracts the attrs carried by the context, if any.
func Attrs(ctx context.Context) []slog.Attr {
	if v, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		return v
	}
	return nil
}
