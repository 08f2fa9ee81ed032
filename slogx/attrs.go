package slogx

import (
	"fmt"
	"log/slog"
	"reflect"
)

const (
	OwnerKey = "owner"
	EventKey = "event"
)

// Owner identifies a handler owner by its dynamic type.
// Owners are often pointers to large structs, so the value itself is never logged.
func Owner(owner any) slog.Attr {
	return slog.String(OwnerKey, fmt.Sprintf("%T", owner))
}

// Event identifies an event by its dynamic type.
func Event(event any) slog.Attr {
	return slog.String(EventKey, fmt.Sprintf("%T", event))
}

// EventType is [Event] for when only the type is at hand.
func EventType(typ reflect.Type) slog.Attr {
	if typ == nil {
		return slog.String(EventKey, "<nil>")
	}
	return slog.String(EventKey, typ.String())
}
