package slogx

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

var _ slog.Handler = (*DedupeHandler)(nil)

// DedupeHandler keeps only the last value for each attribute key.
// A bus logger is often narrowed with [Owner] and [Event] more than once along a call chain, and each key should still be written once.
type DedupeHandler struct {
	group string
	attrs []slog.Attr
	index map[string]int // index maps a group-qualified key to its position in attrs.
	impl  slog.Handler
}

func NewDedupeHandler(impl slog.Handler) slog.Handler {
	if impl == nil {
		panic("nil implementing handler")
	}
	return &DedupeHandler{
		index: map[string]int{},
		impl:  impl,
	}
}

func (s *DedupeHandler) qualify(key string) string {
	if len(s.group) == 0 {
		return key
	}
	return s.group + "." + key
}

func (s *DedupeHandler) clone() *DedupeHandler {
	return &DedupeHandler{
		group: s.group,
		attrs: slices.Clone(s.attrs),
		index: maps.Clone(s.index),
		impl:  s.impl,
	}
}

func (s *DedupeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return s.impl.Enabled(ctx, level)
}

func (s *DedupeHandler) Handle(ctx context.Context, record slog.Record) error {
	merged := s
	if record.NumAttrs() > 0 {
		attrs := make([]slog.Attr, 0, record.NumAttrs())
		record.Attrs(func(attr slog.Attr) bool {
			attrs = append(attrs, attr)
			return true
		})
		record = slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
		merged = s.merge(attrs)
	}
	return merged.impl.WithAttrs(merged.attrs).Handle(ctx, record)
}

func (s *DedupeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	return s.merge(attrs)
}

func (s *DedupeHandler) merge(attrs []slog.Attr) *DedupeHandler {
	cp := s.clone()
	for _, attr := range attrs {
		attr.Key = cp.qualify(attr.Key)
		if i, ok := cp.index[attr.Key]; ok {
			cp.attrs[i] = attr
			continue
		}
		cp.index[attr.Key] = len(cp.attrs)
		cp.attrs = append(cp.attrs, attr)
	}
	return cp
}

func (s *DedupeHandler) WithGroup(name string) slog.Handler {
	if len(name) == 0 {
		return s
	}
	cp := s.clone()
	cp.group = cp.qualify(name)
	return cp
}
