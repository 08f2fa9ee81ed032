package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
)

type busConf struct {
	logger      *slog.Logger
	logFaults   bool
	queueBuffer int
	recorder    Recorder
}

func defaultConf() busConf {
	return busConf{
		logger:    slog.Default(),
		logFaults: true,
		recorder:  nopRecorder{},
	}
}

// Option configures a [Bus] created with [New].
type Option func(conf *busConf) error

// WithLogger sets the logger used by the [Bus].
// By default, [slog.Default] is used.
func WithLogger(logger *slog.Logger) Option {
	return func(conf *busConf) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		conf.logger = logger
		return nil
	}
}

// LogFaults determines whether each [Fault] is logged at warn level when it's replayed.
// This is enabled by default.
func LogFaults(enabled bool) Option {
	return func(conf *busConf) error {
		conf.logFaults = enabled
		return nil
	}
}

// QueueBuffer sets the initial capacity of the dispatch queue.
// The queue grows as needed, so this only avoids early reallocation.
func QueueBuffer(size int) Option {
	return func(conf *busConf) error {
		if size < 0 {
			return fmt.Errorf("invalid queue buffer size '%d'", size)
		}
		conf.queueBuffer = size
		return nil
	}
}

// WithRecorder sets a [Recorder] that's notified of dispatch activity, for metrics collection.
func WithRecorder(recorder Recorder) Option {
	return func(conf *busConf) error {
		if recorder == nil {
			return errors.New("nil recorder")
		}
		conf.recorder = recorder
		return nil
	}
}
