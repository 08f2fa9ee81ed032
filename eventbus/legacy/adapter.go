package legacy

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/saylorsolutions/superbus/structures/set"
	"github.com/saylorsolutions/superbus/syncx"
)

var (
	ErrNoHandler    = errors.New("no handler found")
	ErrInvalidEvent = errors.New("event ID 0 cannot be dispatched")
	ErrStopped      = errors.New("adapter is stopped")
)

// Event is a unique ID for an event in a domain.
// Do not use events [EventNone] or [EventAsyncError], as they are reserved for system use.
//
// If you want to listen for [EventAsyncError], then use [Adapter.RegisterErrorHandler].
type Event int

const (
	EventNone       Event = iota // EventNone is a reserved event used for detecting errors.
	EventAsyncError              // EventAsyncError is a reserved event used for transmitting processing errors.
)

type Param any

func Paramf(format string, args ...any) Param {
	return Param(fmt.Sprintf(format, args...))
}

type HandlerID string

// Handler describes a component of the program that handles integer events.
type Handler interface {
	// HandleEvent will handle the given event and do some kind of processing.
	// Returned errors will be reported with a dispatched [EventAsyncError].
	HandleEvent(evt Event, params ...Param) error
	// Stop will alert the [Handler] that it should clean up resources and reject further events.
	// This can be ignored if not needed.
	Stop()
}

// HandlerFunc is a function that implements the Handler interface.
// This is intended for simple event handling cases where [Handler.Stop] has no real semantics for the handling component.
type HandlerFunc func(evt Event, params ...Param) error

func (f HandlerFunc) HandleEvent(evt Event, params ...Param) error {
	return f(evt, params...)
}

func (f HandlerFunc) Stop() {}

// Envelope is the value posted to the [eventbus.Bus] for each legacy dispatch.
// Typed handlers on the same bus may register for *Envelope to observe legacy traffic.
type Envelope struct {
	Event  Event
	Params []Param
	result syncx.Future[error]
}

// resultMarker is posted behind an [Envelope] when dispatching from a handler, to resolve its result once every legacy handler has seen it.
type resultMarker struct {
	result syncx.Future[error]
}

// legacyHandler is the bus owner for one registered [Handler].
type legacyHandler struct {
	id      HandlerID
	handler Handler
	adapter *Adapter
}

func (h *legacyHandler) handle(env *Envelope) error {
	if !h.adapter.handledEvents[env.Event].Has(h.id) {
		return nil
	}
	if err := h.handler.HandleEvent(env.Event, env.Params...); err != nil {
		if env.result != nil {
			env.result.Resolve(err)
		}
		return fmt.Errorf("handler '%s' failed to handle event %d: %w", h.id, env.Event, err)
	}
	return nil
}

// Adapter exposes the integer event API on top of an [eventbus.Bus].
// Each dispatch is a single post of an [Envelope], so legacy events are ordered with every other event on the bus.
//
// Like the Bus, an Adapter is not concurrency safe. Use it from an [eventbus.Loop] to share it between goroutines.
type Adapter struct {
	bus           *eventbus.Bus
	handlers      map[HandlerID]*legacyHandler
	handledEvents map[Event]set.Set[HandlerID]
	stopped       bool
}

// NewAdapter creates an [Adapter] that dispatches through bus.
func NewAdapter(bus *eventbus.Bus) (*Adapter, error) {
	if bus == nil {
		return nil, errors.New("nil bus")
	}
	a := &Adapter{
		bus:           bus,
		handlers:      map[HandlerID]*legacyHandler{},
		handledEvents: map[Event]set.Set[HandlerID]{},
	}
	if err := bus.Register(a, eventbus.Method((*Adapter).resolve)); err != nil {
		return nil, err
	}
	bus.AddFaultObserver(a.observeFault)
	return a, nil
}

func (a *Adapter) resolve(marker *resultMarker) error {
	marker.result.Resolve(nil)
	return nil
}

// observeFault reports failures of this Adapter's handlers as an [EventAsyncError].
// Failures while handling an EventAsyncError are dropped, since there's no recourse for them.
func (a *Adapter) observeFault(fault *eventbus.Fault) error {
	owner, ok := fault.Owner.(*legacyHandler)
	if !ok || owner.adapter != a || a.stopped {
		return nil
	}
	env, ok := fault.Event.(*Envelope)
	if !ok || env.Event == EventAsyncError {
		return nil
	}
	a.DispatchError(fault.Err)
	return nil
}

// Dispatch will submit an event for propagation.
// If an error occurs, then an [EventAsyncError] is propagated to an appropriate handler, if registered.
func (a *Adapter) Dispatch(evt Event, params ...Param) {
	a.dispatch(evt, params, syncx.NewFuture[error]())
}

// DispatchResult will submit an event for propagation, and return a [syncx.Future] for the result.
// The future resolves with the first error returned by a handler, or nil once all handlers have run.
// If an error is returned, then an [EventAsyncError] is still propagated to an appropriate handler, if registered.
//
// When called from a handler, the result is only resolved after the current event finishes, so don't await it there.
func (a *Adapter) DispatchResult(evt Event, params ...Param) syncx.Future[error] {
	result := syncx.NewFuture[error]()
	a.dispatch(evt, params, result)
	return result
}

func (a *Adapter) dispatch(evt Event, params []Param, result syncx.Future[error]) {
	if a.stopped {
		result.Resolve(ErrStopped)
		return
	}
	if evt == EventNone {
		result.Resolve(ErrInvalidEvent)
		a.DispatchError(ErrInvalidEvent)
		return
	}
	if len(a.handledEvents[evt]) == 0 {
		err := fmt.Errorf("%w for event %d", ErrNoHandler, evt)
		result.Resolve(err)
		if evt != EventAsyncError {
			a.DispatchError(err)
		}
		return
	}
	_ = a.bus.Post(&Envelope{Event: evt, Params: params, result: result})
	if a.bus.Draining() {
		_ = a.bus.Post(&resultMarker{result: result})
		return
	}
	result.Resolve(nil)
}

func (a *Adapter) DispatchErrorf(format string, args ...any) {
	a.DispatchError(fmt.Errorf(format, args...))
}

func (a *Adapter) DispatchError(err error) {
	a.Dispatch(EventAsyncError, err)
}

// Register adds handler under id, handling handledEvent.
// Registering a new handler with an existing id replaces the old handler, keeping the events it handled.
func (a *Adapter) Register(id HandlerID, handledEvent Event, handler Handler) error {
	if a.stopped {
		return ErrStopped
	}
	if handler == nil {
		return fmt.Errorf("nil handler for id '%s'", id)
	}
	owner := &legacyHandler{id: id, handler: handler, adapter: a}
	if err := a.bus.Register(owner, eventbus.Method((*legacyHandler).handle)); err != nil {
		return err
	}
	if old, ok := a.handlers[id]; ok {
		_ = a.bus.Unregister(old)
	}
	a.handlers[id] = owner
	a.handledEvents[handledEvent] = a.handledEvents[handledEvent].Add(id)
	return nil
}

func (a *Adapter) RegisterFunc(id HandlerID, handledEvent Event, handler HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("nil handler for id '%s'", id)
	}
	return a.Register(id, handledEvent, handler)
}

// RegisterErrorHandler registers a function that's called for each error dispatched as an [EventAsyncError].
func (a *Adapter) RegisterErrorHandler(id HandlerID, handler func(error)) error {
	if handler == nil {
		return fmt.Errorf("nil error handler for id '%s'", id)
	}
	return a.Register(id, EventAsyncError, HandlerFunc(func(evt Event, params ...Param) error {
		var err error
		if specErr := MapParam(&err, params); specErr != nil {
			return fmt.Errorf("expected a single error parameter: %w", specErr)
		}
		handler(err)
		return nil
	}))
}

// UnRegister stops and removes the handler with the given id.
// Queued deliveries to the handler are skipped.
func (a *Adapter) UnRegister(id HandlerID) {
	owner, ok := a.handlers[id]
	if !ok {
		return
	}
	owner.handler.Stop()
	_ = a.bus.Unregister(owner)
	delete(a.handlers, id)
	for evt, ids := range a.handledEvents {
		ids.Remove(id)
		if len(ids) == 0 {
			delete(a.handledEvents, evt)
		}
	}
}

func (a *Adapter) AddHandledEvent(id HandlerID, evt Event) error {
	if _, ok := a.handlers[id]; !ok {
		return fmt.Errorf("no registered handler with id '%s'", id)
	}
	a.handledEvents[evt] = a.handledEvents[evt].Add(id)
	return nil
}

func (a *Adapter) SetHandledExclusive(id HandlerID, evt Event) error {
	if _, ok := a.handlers[id]; !ok {
		return fmt.Errorf("no registered handler with id '%s'", id)
	}
	a.handledEvents[evt] = set.New(id)
	return nil
}

func (a *Adapter) RemoveHandledEvent(id HandlerID, evt Event) error {
	if _, ok := a.handlers[id]; !ok {
		return fmt.Errorf("no registered handler with id '%s'", id)
	}
	a.handledEvents[evt] = a.handledEvents[evt].Remove(id)
	return nil
}

// Registration is a handle for a handler added with [Adapter.AddHandler].
type Registration struct {
	ID      HandlerID
	adapter *Adapter
}

// Remove stops and removes the registered handler.
func (r *Registration) Remove() {
	r.adapter.UnRegister(r.ID)
}

// AddHandler registers handler for evt with a generated [HandlerID].
func (a *Adapter) AddHandler(evt Event, handler Handler) (*Registration, error) {
	id := HandlerID(uuid.NewString())
	if err := a.Register(id, evt, handler); err != nil {
		return nil, err
	}
	return &Registration{ID: id, adapter: a}, nil
}

// Stop stops and removes every handler.
// Dispatches after Stop resolve with [ErrStopped].
func (a *Adapter) Stop() {
	if a.stopped {
		return
	}
	for id := range a.handlers {
		a.UnRegister(id)
	}
	_ = a.bus.Unregister(a)
	a.stopped = true
}
