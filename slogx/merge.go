package slogx

import (
	"context"
	"github.com/saylorsolutions/superbus/assert"
	"log/slog"
)

var _ slog.Handler = (fanout)(nil)

// fanout sends each record to every handler that's enabled for its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	errs := assert.CollectErrors()
	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs.Add(h.Handle(ctx, record.Clone()))
		}
	}
	return errs.Result()
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	derived := make(fanout, len(f))
	for i, h := range f {
		derived[i] = fn(h)
	}
	return derived
}

// MergeHandlers combines handlers with their own levels, like a console at info and a JSON file at debug.
// A record is only passed to the handlers enabled for its level.
func MergeHandlers(a, b slog.Handler, others ...slog.Handler) slog.Handler {
	return append(fanout{a, b}, others...)
}
