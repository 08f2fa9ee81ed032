package eventbus

import "reflect"

// Recorder receives notifications about dispatch activity.
// It's called synchronously from the dispatching goroutine, so implementations should return quickly.
type Recorder interface {
	// Posted is called for each posted event, including synthesized [DeadEvent], with the number of handlers it was queued for.
	Posted(eventType reflect.Type, matched int)
	// Invoked is called just before a live handler is invoked.
	Invoked(eventType reflect.Type)
	// Dead is called when an event of the given type had no matching handlers.
	Dead(eventType reflect.Type)
	// Faulted is called when a handler fails, before the [Fault] is replayed.
	Faulted(fault *Fault)
	// Drained is called each time the dispatch queue empties, with the number of items dispatched and faults collected since the queue started filling.
	Drained(items, faults int)
}

type nopRecorder struct{}

func (nopRecorder) Posted(reflect.Type, int) {}
func (nopRecorder) Invoked(reflect.Type)     {}
func (nopRecorder) Dead(reflect.Type)        {}
func (nopRecorder) Faulted(*Fault)           {}
func (nopRecorder) Drained(int, int)         {}
