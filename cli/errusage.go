package cli

import (
	"errors"
	"fmt"
)

// UsageError signals that a command was invoked incorrectly, and the user should be pointed at its usage information.
// [Command.Exec] records its command path in any UsageError returned by its [CommandFunc] or a [PreExec].
type UsageError struct {
	Command string // Command is the command chain that failed, like "superbus run".
	wrapped error
}

func (e *UsageError) Error() string {
	if e.wrapped == nil {
		return "usage error"
	}
	return "usage error: " + e.wrapped.Error()
}

func (e *UsageError) Is(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

func (e *UsageError) Unwrap() error {
	return e.wrapped
}

// Hint tells the user how to get usage information for the command that failed.
func (e *UsageError) Hint() string {
	if len(e.Command) == 0 {
		return "Run with --help for usage."
	}
	return fmt.Sprintf("Run '%s --help' for usage.", e.Command)
}

// NewUsageError is used to create a [UsageError].
// The format and args parameters are passed to [fmt.Errorf] to create the underlying error.
func NewUsageError(format string, args ...any) error {
	return &UsageError{wrapped: fmt.Errorf(format, args...)}
}

// withCommand sets the command path of the first UsageError in err's chain, unless a deeper command already set it.
func withCommand(err error, path string) error {
	var usage *UsageError
	if errors.As(err, &usage) && len(usage.Command) == 0 {
		usage.Command = path
	}
	return err
}
