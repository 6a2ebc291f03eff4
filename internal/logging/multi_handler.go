package logging

import (
	"context"
	"log/slog"
)

// multiHandler fans one record out to every sink handler.
// Params: ordered handler list.
// Returns: slog.Handler writing to all sinks.
type multiHandler []slog.Handler

// Enabled reports whether any sink accepts the level.
// Params: ctx request context; level record level.
// Returns: true when at least one sink is enabled.
func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range m {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle forwards the record to every enabled sink.
// Params: ctx request context; record log record.
// Returns: first sink error.
func (m multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs forwards attribute scoping to every sink.
// Params: attrs added attributes.
// Returns: handler with scoped sinks.
func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for idx, handler := range m {
		out[idx] = handler.WithAttrs(attrs)
	}
	return out
}

// WithGroup forwards group scoping to every sink.
// Params: name group name.
// Returns: handler with scoped sinks.
func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for idx, handler := range m {
		out[idx] = handler.WithGroup(name)
	}
	return out
}
