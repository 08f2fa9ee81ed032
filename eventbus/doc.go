/*
Package eventbus provides an in-process event bus that dispatches events by their type, rather than by a topic name or event ID.

# Design Priorities

Here are the design priorities of the implementation:

  - It should be deterministic. Handlers run in priority order, and events are delivered breadth-first in the order they're posted, even when handlers post more events.
  - It should be cheap to dispatch the same type of event repeatedly. Only the first event of a type pays to scan all registered handlers.
  - It should be transparent about failures. Handler errors and panics are collected and passed to fault observers once dispatch finishes.
  - It should not need goroutines. A [Bus] runs handlers synchronously on the goroutine that posted the event.

# Owners and Descriptors

Handlers are registered on behalf of an owner with [Bus.Register], and removed all at once with [Bus.Unregister].
Each handler is described by a [Descriptor] that reports whether it accepts an event, how to invoke it, and its priority.
The [Bus] doesn't care how a [Descriptor] is produced, but there are a few ways provided:

  - [Method] creates a typed [Descriptor] from a method expression like (*Widget).OnClick.
  - [Func] creates a typed [Descriptor] from a function that doesn't need its owner.
  - [Multi] creates a [Descriptor] per type for a function that accepts several types through [MultiEvent].
  - Package eventbus/subscribe derives descriptors from an owner's On* methods.

A handler accepting an interface type receives every event implementing that interface, which is how "supertype" handlers are expressed.

Handlers with a higher priority run first, and handlers with the same priority run in the order they were registered.
A [Filter] may be added to typed handlers with When. A filtered handler still counts as accepting the event, it's just not invoked.

# Event Flow

Components post events with [Bus.Post].
Every delivery of the event to an accepting handler is added to the tail of the dispatch queue, and then the queue is drained.
If a handler posts another event, then it's queued behind the deliveries that are already waiting, and Post returns immediately.
The outer Post returns only after the queue is empty.

If nothing accepts a posted value, then a [DeadEvent] wrapping it is posted in its place.

# Failures

Contract violations, like posting nil or unregistering an unknown owner, are returned as errors to the caller.
Failures in handlers are never returned from [Bus.Post]. They're recorded as a [Fault] and passed to each [FaultObserver] added with [Bus.AddFaultObserver] after the queue empties.
Errors from fault observers are ignored.

# Concurrency

A [Bus] is not safe for concurrent use.
If events need to be posted from many goroutines, then use a [Loop], which owns the [Bus] on a single goroutine and accepts work from any goroutine.
*/
package eventbus
