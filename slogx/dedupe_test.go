package slogx

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"log/slog"
	"strings"
	"testing"
)

func TestDedupeHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDedupeHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	log = log.With("testkey", 1)
	log = log.With("testkey", 2)
	log = log.With("testkey", 3)
	log = log.With("testkey", 4)
	log.Info("Test")
	handler := log.Handler().(*DedupeHandler)
	assert.Equal(t, 1, strings.Count(buf.String(), "testkey"))
	assert.Len(t, handler.attrs, 1)
	assert.Equal(t, int64(4), handler.attrs[0].Value.Int64())
	assert.Equal(t, map[string]int{"testkey": 0}, handler.index)
}

func TestDedupeHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewDedupeHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
	log = log.With("testkey", 1)
	log = log.With("testkey", 2)
	log = log.WithGroup("group")
	log = log.With("groupkey", 1)
	log = log.With("groupkey", 2)
	log.Info("Test")
	handler := log.Handler().(*DedupeHandler)
	assert.Equal(t, 1, strings.Count(buf.String(), "testkey"))
	assert.Equal(t, 1, strings.Count(buf.String(), "group.groupkey"))
	assert.Len(t, handler.attrs, 2)
	assert.Equal(t, map[string]int{"testkey": 0, "group.groupkey": 1}, handler.index)
}

func TestDedupeHandler_NilImpl(t *testing.T) {
	assert.Panics(t, func() {
		NewDedupeHandler(nil)
	})
}

func TestDedupeHandler_ParentUnchanged(t *testing.T) {
	var buf bytes.Buffer
	parent := slog.New(NewDedupeHandler(slog.NewTextHandler(&buf, nil))).With("owner", "a", "event", "string")
	child := parent.With("owner", "b")
	child.Info("child")
	parent.Info("parent")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "owner=b")
	assert.Contains(t, lines[1], "owner=a", "Replacing a key in a child logger should not change its parent")
}
