//go:build !noassert

package assert

import (
	"fmt"
	"runtime"
)

// Violation is the panic value of a failed assertion.
type Violation struct {
	Label  string
	Caller string // Caller is the file and line of the failed check, or "unknown".
}

func (v *Violation) Error() string {
	return fmt.Sprintf("assertion '%s' failed at %s", v.Label, v.Caller)
}

// True panics with a *[Violation] if result is false.
// It's meant for invariants whose failure means a bug in this module, never for validating input.
func True(label string, result bool) {
	if result {
		return
	}
	caller := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		caller = fmt.Sprintf("%s:%d", file, line)
	}
	panic(&Violation{Label: label, Caller: caller})
}
