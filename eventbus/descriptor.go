package eventbus

import (
	"fmt"
	"reflect"
	"slices"
)

// Descriptor describes a single handler: which events it accepts, how to invoke it, and its priority.
//
// The [Bus] remembers the result of Matches per concrete event type, so Matches must give the same answer for every value of the same concrete type.
// Value-dependent decisions belong in Invoke, which is where filtering happens.
type Descriptor interface {
	// Matches reports whether the handler accepts events of this value's type.
	Matches(event any) bool
	// Invoke calls the handler on behalf of owner.
	// A returned error becomes a [Fault].
	Invoke(owner, event any) error
	// Priority determines execution order. Handlers with a higher priority run first.
	Priority() int
}

// nullDescriptor replaces the descriptor of an unregistered handler.
type nullDescriptor struct{}

func (nullDescriptor) Matches(any) bool      { return false }
func (nullDescriptor) Invoke(_, _ any) error { return nil }
func (nullDescriptor) Priority() int         { return 0 }

// Filter decides whether a matched handler should actually run for an event.
// A handler that's filtered out still counts as matching, so it never causes a [DeadEvent].
type Filter[O, E any] func(owner O, event E) bool

// AllOf creates a [Filter] that accepts only when every given filter accepts.
func AllOf[O, E any](filters ...Filter[O, E]) Filter[O, E] {
	return func(owner O, event E) bool {
		for _, f := range filters {
			if !f(owner, event) {
				return false
			}
		}
		return true
	}
}

// AnyOf creates a [Filter] that accepts when at least one of the given filters accepts.
// With no filters it never accepts.
func AnyOf[O, E any](filters ...Filter[O, E]) Filter[O, E] {
	return func(owner O, event E) bool {
		for _, f := range filters {
			if f(owner, event) {
				return true
			}
		}
		return false
	}
}

// Not inverts a [Filter].
func Not[O, E any](filter Filter[O, E]) Filter[O, E] {
	return func(owner O, event E) bool {
		return !filter(owner, event)
	}
}

var _ Descriptor = (*MethodHandler[any, any])(nil)

// MethodHandler is a typed [Descriptor] that accepts events assignable to E and is invoked with an owner of type O.
// Its builder methods return modified copies, so a MethodHandler never changes after it's registered.
type MethodHandler[O, E any] struct {
	fn       func(O, E) error
	priority int
	filters  []Filter[O, E]
}

// Method creates a [MethodHandler] from a function taking the owner and the event, which is usually a method expression.
//
//	bus.Register(widget, eventbus.Method((*Widget).OnClick))
//
// E may be an interface type, in which case every event implementing it is accepted.
func Method[O, E any](fn func(owner O, event E) error) *MethodHandler[O, E] {
	if fn == nil {
		panic("nil handler function")
	}
	return &MethodHandler[O, E]{fn: fn}
}

// Func creates a [MethodHandler] that ignores its owner.
// The owner it's registered with still controls unregistration.
func Func[E any](fn func(event E) error) *MethodHandler[any, E] {
	if fn == nil {
		panic("nil handler function")
	}
	return Method(func(_ any, event E) error {
		return fn(event)
	})
}

// WithPriority returns a copy of the handler with the given priority.
func (h *MethodHandler[O, E]) WithPriority(priority int) *MethodHandler[O, E] {
	cp := *h
	cp.priority = priority
	return &cp
}

// When returns a copy of the handler that's only invoked when all filters accept the owner and event.
func (h *MethodHandler[O, E]) When(filters ...Filter[O, E]) *MethodHandler[O, E] {
	cp := *h
	cp.filters = append(slices.Clip(h.filters), filters...)
	return &cp
}

func (h *MethodHandler[O, E]) Matches(event any) bool {
	_, ok := event.(E)
	return ok
}

func (h *MethodHandler[O, E]) Invoke(owner, event any) error {
	e, ok := event.(E)
	if !ok {
		return fmt.Errorf("%w: expected %s, got %T", ErrEventMismatch, reflect.TypeFor[E](), event)
	}
	o, ok := owner.(O)
	if !ok {
		return fmt.Errorf("%w: expected %s, got %T", ErrOwnerMismatch, reflect.TypeFor[O](), owner)
	}
	for _, filter := range h.filters {
		if !filter(o, e) {
			return nil
		}
	}
	return h.fn(o, e)
}

func (h *MethodHandler[O, E]) Priority() int {
	return h.priority
}
