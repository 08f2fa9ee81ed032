package main

import (
	"context"
	"fmt"
	"github.com/saylorsolutions/superbus/assert"
	"github.com/saylorsolutions/superbus/cli"
	"github.com/saylorsolutions/superbus/env"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/saylorsolutions/superbus/slogx"
	"github.com/saylorsolutions/superbus/telemetry"
	"io"
	"log/slog"
	"os"
	"strconv"
)

const (
	envLogLevel    = "SUPERBUS_LOG_LEVEL"
	envLogFile     = "SUPERBUS_LOG_FILE"
	envMetrics     = "SUPERBUS_METRICS"
	envQueueBuffer = "SUPERBUS_QUEUE_BUFFER"
)

// app holds state shared by all commands.
// Before setup runs, logging is discarded and metrics are disabled, which is what tests rely on.
type app struct {
	stdin       io.Reader
	stderr      io.Writer
	interactive bool
	logger      *slog.Logger
	recorder    eventbus.Recorder
	queueBuffer int
	closers     []func(ctx context.Context) error
}

func newApp(stdin io.Reader, stderr io.Writer, interactive bool) *app {
	return &app{
		stdin:       stdin,
		stderr:      stderr,
		interactive: interactive,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// setup configures logging and metrics from the environment.
// It's run as a [cli.PreExec], so it only happens when a command actually runs.
func (a *app) setup(context.Context) error {
	level, err := env.Parse(envLogLevel, slog.LevelInfo, parseLevel)
	if err != nil {
		return cli.NewUsageError("%w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	handler := slog.Handler(slog.NewTextHandler(a.stderr, opts))
	if path := env.Val(envLogFile, ""); len(path) > 0 {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error {
			return f.Close()
		})
		handler = slogx.MergeHandlers(handler, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	a.logger = slog.New(slogx.NewDedupeHandler(handler)).With("app", "superbus")

	buffer, err := env.Parse(envQueueBuffer, 0, strconv.Atoi)
	if err != nil || buffer < 0 {
		return cli.NewUsageError("invalid %s: must be a non-negative integer", envQueueBuffer)
	}
	a.queueBuffer = buffer

	enabled, err := env.Bool(envMetrics, false)
	if err != nil {
		return cli.NewUsageError("%w", err)
	}
	provider, shutdown, err := telemetry.Init(enabled, a.stderr)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, shutdown)
	if enabled {
		recorder, err := telemetry.NewRecorder(telemetry.Meter(provider))
		if err != nil {
			return err
		}
		a.recorder = recorder
	}
	a.logger.Debug("Configured", "level", level, "metrics", enabled, "queue_buffer", a.queueBuffer)
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// close releases anything set up by setup, in reverse order.
func (a *app) close(ctx context.Context) error {
	errs := assert.CollectErrors()
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs.Add(a.closers[i](ctx))
	}
	a.closers = nil
	return errs.Result()
}

func (a *app) busOptions() []eventbus.Option {
	opts := []eventbus.Option{
		eventbus.WithLogger(a.logger),
		eventbus.QueueBuffer(a.queueBuffer),
	}
	if a.recorder != nil {
		opts = append(opts, eventbus.WithRecorder(a.recorder))
	}
	return opts
}

func (a *app) newBus() (*eventbus.Bus, error) {
	return eventbus.New(a.busOptions()...)
}
