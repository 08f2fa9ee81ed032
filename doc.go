/*
Package superbus is an in-process, type-dispatched publish/subscribe engine.

Owners register handlers with an [eventbus.Bus], and events posted to the bus are delivered to every live handler whose accepted type matches, in descending priority order.
Events posted while another event is being delivered are queued, so delivery is breadth-first and never re-entrant.
Events nothing accepts are re-posted as an [eventbus.DeadEvent], and handler failures are collected and replayed to fault observers once the queue is empty.

The packages are laid out like this:
  - eventbus is the dispatch engine, with [eventbus.Loop] as the front door for concurrent producers.
  - eventbus/subscribe derives handlers from an owner's On* methods.
  - eventbus/legacy bridges the older numeric event dispatcher onto a bus.
  - scenario runs declarative YAML or TOML scenarios and renders traces.
  - telemetry records bus activity with OpenTelemetry metrics.
  - cmd/superbus is a CLI for running scenarios, demos, and benchmarks.

[eventbus.Bus]: github.com/saylorsolutions/superbus/eventbus
[eventbus.Loop]: github.com/saylorsolutions/superbus/eventbus
[eventbus.DeadEvent]: github.com/saylorsolutions/superbus/eventbus
*/
package superbus
