package eventbus

import (
	"fmt"
	"reflect"
	"slices"
)

// DeadEvent is posted by the [Bus] when a posted value wasn't accepted by any handler.
// Register a handler for DeadEvent to find events that nothing is listening for.
// A DeadEvent that nothing accepts is dropped rather than wrapped again.
type DeadEvent struct {
	event any
}

// Event returns the value that no handler accepted.
func (d DeadEvent) Event() any {
	return d.event
}

// MultiEvent is passed to handlers created with [Multi], which accept several unrelated event types with one function.
// It can't be posted directly.
type MultiEvent struct {
	event any
}

// Event returns the value that was posted.
func (m MultiEvent) Event() any {
	return m.event
}

// EventType is a type that a [Multi] handler accepts.
type EventType struct {
	typ     reflect.Type
	matches func(event any) bool
}

// TypeOf creates an [EventType] for T.
// If T is an interface, then any event implementing it is accepted.
func TypeOf[T any]() EventType {
	return EventType{
		typ: reflect.TypeFor[T](),
		matches: func(event any) bool {
			_, ok := event.(T)
			return ok
		},
	}
}

// Matches reports whether event is of this type.
func (t EventType) Matches(event any) bool {
	if t.matches == nil {
		return false
	}
	return t.matches(event)
}

func (t EventType) String() string {
	if t.typ == nil {
		return "<nil>"
	}
	return t.typ.String()
}

// MultiHandler produces one [Descriptor] per declared [EventType], all sharing the same function, priority, and filters.
type MultiHandler[O any] struct {
	fn       func(O, MultiEvent) error
	types    []EventType
	priority int
	filters  []Filter[O, MultiEvent]
}

// Multi creates a [MultiHandler] that's invoked for events of any of the given types.
//
//	bus.Register(logger, eventbus.Multi((*Logger).OnAnything,
//		eventbus.TypeOf[string](),
//		eventbus.TypeOf[int](),
//	).Descriptors()...)
func Multi[O any](fn func(owner O, event MultiEvent) error, types ...EventType) *MultiHandler[O] {
	if fn == nil {
		panic("nil handler function")
	}
	if len(types) == 0 {
		panic("no event types given for multi-event handler")
	}
	return &MultiHandler[O]{fn: fn, types: slices.Clone(types)}
}

// WithPriority returns a copy of the handler with the given priority.
func (h *MultiHandler[O]) WithPriority(priority int) *MultiHandler[O] {
	cp := *h
	cp.priority = priority
	return &cp
}

// When returns a copy of the handler that's only invoked when all filters accept the owner and event.
func (h *MultiHandler[O]) When(filters ...Filter[O, MultiEvent]) *MultiHandler[O] {
	cp := *h
	cp.filters = append(slices.Clip(h.filters), filters...)
	return &cp
}

// Descriptors returns a [Descriptor] for each declared [EventType].
func (h *MultiHandler[O]) Descriptors() []Descriptor {
	descriptors := make([]Descriptor, len(h.types))
	for i, typ := range h.types {
		descriptors[i] = &multiDescriptor[O]{handler: h, typ: typ}
	}
	return descriptors
}

type multiDescriptor[O any] struct {
	handler *MultiHandler[O]
	typ     EventType
}

func (d *multiDescriptor[O]) Matches(event any) bool {
	return d.typ.Matches(event)
}

func (d *multiDescriptor[O]) Invoke(owner, event any) error {
	if !d.typ.Matches(event) {
		return fmt.Errorf("%w: expected %s, got %T", ErrEventMismatch, d.typ, event)
	}
	o, ok := owner.(O)
	if !ok {
		return fmt.Errorf("%w: expected %s, got %T", ErrOwnerMismatch, reflect.TypeFor[O](), owner)
	}
	wrapped := MultiEvent{event: event}
	for _, filter := range d.handler.filters {
		if !filter(o, wrapped) {
			return nil
		}
	}
	return d.handler.fn(o, wrapped)
}

func (d *multiDescriptor[O]) Priority() int {
	return d.handler.priority
}
