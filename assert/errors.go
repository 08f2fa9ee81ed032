package assert

import (
	"fmt"
	"reflect"
	"strings"
)

// Collector accumulates errors of type E, and is itself an error joining them with a separator.
// Errors stay typed, so a Collector[*eventbus.Fault] hands back faults rather than plain errors.
//
// A Collector is not concurrency safe.
type Collector[E error] struct {
	errs    []E
	joinStr string
}

// Collect creates a Collector for errors of type E, optionally with a join string that differs from the default of "\n".
func Collect[E error](joinString ...string) *Collector[E] {
	joinStr := "\n"
	if len(joinString) > 0 {
		joinStr = joinString[0]
	}
	return &Collector[E]{
		joinStr: joinStr,
	}
}

// CollectErrors is Collect for untyped errors.
func CollectErrors(joinString ...string) *Collector[error] {
	return Collect[error](joinString...)
}

// Add adds err unless it's nil, including a nil pointer.
func (c *Collector[E]) Add(err E) *Collector[E] {
	if !isNilError(err) {
		c.errs = append(c.errs, err)
	}
	return c
}

// Addf adds an error created with [fmt.Errorf], so the "%w" verb may be used.
// It's only meaningful for a Collector[error], and panics for any other error type.
func (c *Collector[E]) Addf(format string, args ...any) *Collector[E] {
	err, ok := error(fmt.Errorf(format, args...)).(E)
	if !ok {
		panic(fmt.Sprintf("assert: Addf used with a Collector of %T", err))
	}
	return c.Add(err)
}

// Len returns the number of errors collected so far.
func (c *Collector[E]) Len() int {
	return len(c.errs)
}

// Errors returns the collected errors in the order they were added.
func (c *Collector[E]) Errors() []E {
	return c.errs
}

// Reset forgets everything collected so far.
func (c *Collector[E]) Reset() {
	c.errs = nil
}

// Result returns nil if nothing was collected, and the Collector otherwise.
// Returning an empty Collector directly would still be a non-nil error.
func (c *Collector[E]) Result() error {
	if len(c.errs) > 0 {
		return c
	}
	return nil
}

func (c *Collector[E]) Error() string {
	var buf strings.Builder
	for i, err := range c.errs {
		if i > 0 {
			buf.WriteString(c.joinStr)
		}
		buf.WriteString(err.Error())
	}
	return buf.String()
}

// Unwrap allows using [errors.Is] and [errors.As] to identify any error in the Collector.
func (c *Collector[E]) Unwrap() []error {
	errs := make([]error, len(c.errs))
	for i, err := range c.errs {
		errs[i] = err
	}
	return errs
}

func isNilError(err error) bool {
	if err == nil {
		return true
	}
	val := reflect.ValueOf(err)
	return val.Kind() == reflect.Pointer && val.IsNil()
}
