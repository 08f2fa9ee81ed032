package cli

import (
	"context"
)

// PreExec runs before a [Command] executes, and is a good place for setup that several commands need, like configuring logging.
// Returning an error stops the [Command] from running, and the error is returned from Exec instead.
type PreExec func(ctx context.Context) error

// BeforeExec adds fn to run before any [Command] in this [CommandSet] executes, including nested sub-commands.
// Hooks run from the root [CommandSet] down to the executing [Command], in the order they were added.
// They're skipped when a command only prints usage.
//
// Passing a nil fn will panic.
func (s *CommandSet) BeforeExec(fn PreExec) *CommandSet {
	if fn == nil {
		panic("nil pre-exec function")
	}
	s.preExec = append(s.preExec, fn)
	return s
}

func (s *CommandSet) runPreExec(ctx context.Context) error {
	if s.up != nil {
		if err := s.up.runPreExec(ctx); err != nil {
			return err
		}
	}
	for _, fn := range s.preExec {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}
