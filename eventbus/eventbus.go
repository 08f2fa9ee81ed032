package eventbus

import (
	"fmt"
	"github.com/saylorsolutions/superbus/slogx"
	"github.com/saylorsolutions/superbus/structures/queue"
	"reflect"
	"runtime/debug"
)

// FaultObserver is notified of each [Fault] after the [Bus] finishes draining.
// A returned error (or a panic) is logged at debug level and otherwise ignored, so one broken observer can't keep the others from being notified.
type FaultObserver func(fault *Fault) error

// dispatch is a single queued delivery of an event to a handler.
type dispatch struct {
	event   any
	handler *registeredHandler
}

// Bus dispatches posted events to the handlers of registered owners, selected by the event's type.
//
// A Bus is intended for use from a single goroutine, but it's re-entrant: handlers may call [Bus.Post], [Bus.Register], and [Bus.Unregister].
// Use a [Loop] to share a Bus between goroutines.
type Bus struct {
	conf      busConf
	registry  registry
	cache     typeCache
	queue     *queue.Queue[dispatch]
	faults    []*Fault
	observers []FaultObserver
	draining  bool
}

// New creates a [Bus] with the given options.
// There is intentionally no global instance; create a Bus and pass it to the components that need it.
func New(opts ...Option) (*Bus, error) {
	conf := defaultConf()
	for _, opt := range opts {
		if err := opt(&conf); err != nil {
			return nil, err
		}
	}
	return &Bus{
		conf:     conf,
		registry: newRegistry(),
		cache:    typeCache{},
		queue:    queue.NewQueue[dispatch](conf.queueBuffer),
	}, nil
}

// Register adds a handler for owner for each of the given descriptors.
// Owners are identified by interface equality, so they must be comparable, and should usually be pointers.
// Registering the same owner again adds more handlers, and registering an owner after [Bus.Unregister] is supported.
//
// Handlers registered while an event is being dispatched won't see that event, but will see events posted afterward.
// No handler is added if any descriptor is invalid.
func (b *Bus) Register(owner any, descriptors ...Descriptor) error {
	if isNil(owner) {
		return ErrNilOwner
	}
	if !isComparable(owner) {
		return fmt.Errorf("%w: %T", ErrUncomparableOwner, owner)
	}
	for i, descriptor := range descriptors {
		if isNil(descriptor) {
			return fmt.Errorf("%w: descriptor %d for owner %T", ErrNilDescriptor, i, owner)
		}
	}
	for _, descriptor := range descriptors {
		b.registry.add(owner, descriptor)
	}
	b.conf.logger.Debug("Registered owner", slogx.Owner(owner), "handlers", len(descriptors))
	return nil
}

// Unregister disables all handlers of owner.
// Queued deliveries to those handlers are skipped, even when Unregister is called from a handler during dispatch.
// Returns [ErrUnregisteredOwner] if owner has no live handlers.
func (b *Bus) Unregister(owner any) error {
	if isNil(owner) || !isComparable(owner) {
		return fmt.Errorf("%w: %T", ErrUnregisteredOwner, owner)
	}
	if !b.registry.tombstoneOwner(owner) {
		return fmt.Errorf("%w: %T", ErrUnregisteredOwner, owner)
	}
	for _, entry := range b.cache {
		entry.purge()
	}
	b.conf.logger.Debug("Unregistered owner", slogx.Owner(owner))
	return nil
}

// AddFaultObserver adds an observer for handler failures.
// Passing a nil [FaultObserver] will panic.
func (b *Bus) AddFaultObserver(observer FaultObserver) {
	if observer == nil {
		panic("nil fault observer")
	}
	b.observers = append(b.observers, observer)
}

// Post delivers event to every handler that accepts it, in descending priority order.
//
// If the [Bus] is already dispatching (Post was called from a handler), then the deliveries are queued behind everything that's already queued, and Post returns immediately.
// Otherwise, Post dispatches until the queue is empty, including any events posted by handlers along the way.
// If no handler accepts event, then a [DeadEvent] wrapping it is posted instead.
//
// Handler failures are never returned; they're passed to fault observers.
// Only [ErrNilEvent] and [ErrMultiEventPosted] are returned.
func (b *Bus) Post(event any) error {
	if isNil(event) {
		return ErrNilEvent
	}
	switch event.(type) {
	case MultiEvent, *MultiEvent:
		return ErrMultiEventPosted
	}
	b.enqueue(event)
	if !b.draining {
		b.drain()
	}
	return nil
}

// Draining reports whether the [Bus] is currently dispatching events.
func (b *Bus) Draining() bool {
	return b.draining
}

// Handlers returns the number of live handlers.
func (b *Bus) Handlers() int {
	return b.registry.liveHandlers()
}

// CachedTypes returns the number of concrete event types the [Bus] has seen.
func (b *Bus) CachedTypes() int {
	return len(b.cache)
}

func (b *Bus) enqueue(event any) {
	typ := reflect.TypeOf(event)
	entry := b.cache.lookupOrCreate(typ, &b.registry)
	entry.refresh(&b.registry, event)
	var matched int
	for handler := range entry.all() {
		b.queue.Push(dispatch{event: event, handler: handler})
		matched++
	}
	b.conf.recorder.Posted(typ, matched)
	if matched > 0 {
		return
	}
	b.conf.recorder.Dead(typ)
	if _, ok := event.(DeadEvent); ok {
		return
	}
	b.conf.logger.Debug("No handler accepted event, posting DeadEvent", slogx.EventType(typ))
	b.enqueue(DeadEvent{event: event})
}

func (b *Bus) drain() {
	b.draining = true
	defer func() {
		b.draining = false
	}()
	for {
		var items int
		for item := range b.queue.Drain() {
			items++
			b.dispatch(item)
		}
		faults := b.faults
		b.faults = nil
		if items > 0 {
			b.conf.recorder.Drained(items, len(faults))
		}
		if len(faults) == 0 {
			return
		}
		// Observers may post, so loop around until nothing is queued.
		b.replay(faults)
	}
}

func (b *Bus) dispatch(item dispatch) {
	handler := item.handler
	if !handler.live {
		return
	}
	// Capture the owner now, since the handler may unregister itself.
	owner := handler.owner
	b.conf.recorder.Invoked(reflect.TypeOf(item.event))
	if err := invoke(handler.descriptor, owner, item.event); err != nil {
		fault := &Fault{Err: err, Owner: owner, Event: item.event}
		b.faults = append(b.faults, fault)
		b.conf.recorder.Faulted(fault)
	}
}

func invoke(descriptor Descriptor, owner, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return descriptor.Invoke(owner, event)
}

func (b *Bus) replay(faults []*Fault) {
	observers := b.observers
	for _, fault := range faults {
		if b.conf.logFaults {
			b.conf.logger.Warn("Handler failed",
				slogx.Owner(fault.Owner),
				slogx.Event(fault.Event),
				"error", fault.Err,
			)
		}
		for _, observer := range observers {
			if err := notify(observer, fault); err != nil {
				b.conf.logger.Debug("Fault observer failed, ignoring", "error", err)
			}
		}
	}
}

func notify(observer FaultObserver, fault *Fault) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return observer(fault)
}

// isComparable reports whether owner can be compared with ==.
// The type alone isn't enough, since a struct with an interface field may hold a slice or map.
func isComparable(owner any) bool {
	return reflect.ValueOf(owner).Comparable()
}

// isNil reports whether val is nil, or a nil value of a nillable kind.
func isNil(val any) bool {
	if val == nil {
		return true
	}
	rval := reflect.ValueOf(val)
	switch rval.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rval.IsNil()
	default:
		return false
	}
}
