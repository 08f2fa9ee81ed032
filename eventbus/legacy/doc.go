/*
Package legacy provides the integer event API on top of an [eventbus.Bus].

# Primitives

Every [Event] is an integer representing something specific that happens in an application.
It's recommended to create a global enum of [Event] that is accessible to all parts of the application to have a consistent, documented reference of events.

Note that there are two reserved event numbers: [EventNone] and [EventAsyncError] that are set to 0 and 1, respectively.
These event numbers should not be used with different semantics, as they're used internally.

An event may be accompanied by one or more [Param] that provide additional details for understanding the event.
A [Param] may be any type, so a [ParamAssertion] can be used to make some assertion about a [Param].
Many [ParamAssertion] can be combined with [ParamSpec] to create a function that applies all of them to all parameters.

# Registration

An [Adapter] only delivers an [Event] to a [Handler] that's registered to handle it.
To register a [Handler], use [Adapter.Register] with a string handler ID, the event that the [Handler] should handle, and the [Handler] implementation.
To allow a [Handler] to handle multiple events, use [Adapter.AddHandledEvent].
[Adapter.AddHandler] generates an ID and returns a [Registration] that can remove the handler later.

To receive and handle errors that occur while handling events, use [Adapter.RegisterErrorHandler] to register a function that is called for each error.

# Event Flow

Each dispatch is posted to the underlying bus as a single [Envelope], so legacy events follow the same breadth-first ordering as every other event.
Use [Adapter.DispatchResult] to get a [syncx.Future] resolved with the first handler error.
All errors are still dispatched to any registered error handlers.

[syncx.Future]: github.com/saylorsolutions/superbus/syncx/future.go
*/
package legacy
