// Package subscribe derives [eventbus.Descriptor] values from an owner's methods.
//
// Any exported method named On followed by an upper case letter, taking exactly one parameter and returning either nothing or an error, is a handler for events assignable to that parameter's type.
//
//	type Widget struct{}
//
//	func (w *Widget) OnClick(evt ClickEvent) error { ... }
//	func (w *Widget) OnShape(evt Shape) { ... }
//
//	err := subscribe.Register(bus, widget)
//
// Owners implementing [Subscriber] can set the priority, filters, or [eventbus.MultiEvent] types of each handler method.
package subscribe

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/saylorsolutions/superbus/structures/set"
	"github.com/saylorsolutions/superbus/syncx"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNoHandlers       = errors.New("no handler methods found")
	ErrInvalidSignature = errors.New("invalid handler method signature")
	ErrUnknownMethod    = errors.New("subscription options refer to an unknown handler method")
	ErrMissingTypes     = errors.New("MultiEvent handler declares no event types")
)

const handlerPrefix = "On"

var (
	errorType      = reflect.TypeFor[error]()
	multiEventType = reflect.TypeFor[eventbus.MultiEvent]()
)

// Filter decides whether a handler method should run for an event.
type Filter func(owner, event any) bool

// Options customizes one handler method.
type Options struct {
	// Priority determines execution order. Handlers with a higher priority run first.
	Priority int
	// Types lists the accepted event types of a method taking an [eventbus.MultiEvent].
	Types []eventbus.EventType
	// Filters must all accept an event for the method to run.
	Filters []Filter
}

// Subscriber may be implemented by owners to provide [Options] for handler methods, keyed by method name.
type Subscriber interface {
	Subscriptions() map[string]Options
}

// handlerMethod is the derived shape of one handler method, shared by every owner of the same type.
type handlerMethod struct {
	name      string
	fn        reflect.Value
	eventType reflect.Type
	hasError  bool
}

var methodCache syncx.Memo[reflect.Type, []handlerMethod]

// Register derives descriptors for owner with [Descriptors] and registers them with bus.
func Register(bus *eventbus.Bus, owner any) error {
	if bus == nil {
		return errors.New("nil bus")
	}
	descriptors, err := Descriptors(owner)
	if err != nil {
		return err
	}
	return bus.Register(owner, descriptors...)
}

// Descriptors derives a descriptor for each handler method of owner.
// The method scan for each owner type only happens the first time it's seen.
func Descriptors(owner any) ([]eventbus.Descriptor, error) {
	if owner == nil {
		return nil, eventbus.ErrNilOwner
	}
	typ := reflect.TypeOf(owner)
	methods, err := methodsOf(typ)
	if err != nil {
		return nil, err
	}
	var opts map[string]Options
	if sub, ok := owner.(Subscriber); ok {
		opts = sub.Subscriptions()
	}
	known := set.New[string]()
	var descriptors []eventbus.Descriptor
	for _, method := range methods {
		known.Add(method.name)
		opt := opts[method.name]
		if method.eventType == multiEventType {
			if len(opt.Types) == 0 {
				return nil, fmt.Errorf("%w: %s.%s", ErrMissingTypes, typ, method.name)
			}
			descriptors = append(descriptors, multiDescriptors(method, typ, opt)...)
			continue
		}
		descriptors = append(descriptors, &methodDescriptor{
			method:    method,
			ownerType: typ,
			priority:  opt.Priority,
			filters:   opt.Filters,
		})
	}
	if unknown := set.Sorted(set.FromKeys(opts).Difference(known)); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, typ, strings.Join(unknown, ", "))
	}
	return descriptors, nil
}

func methodsOf(typ reflect.Type) ([]handlerMethod, error) {
	return methodCache.Load(typ, derive)
}

func derive(typ reflect.Type) ([]handlerMethod, error) {
	var methods []handlerMethod
	for i := range typ.NumMethod() {
		method := typ.Method(i)
		if !isHandlerName(method.Name) {
			continue
		}
		mtyp := method.Type
		// The receiver is the first input.
		if mtyp.NumIn() != 2 || mtyp.IsVariadic() {
			return nil, fmt.Errorf("%w: %s.%s must take exactly one parameter", ErrInvalidSignature, typ, method.Name)
		}
		switch {
		case mtyp.NumOut() == 0:
		case mtyp.NumOut() == 1 && mtyp.Out(0) == errorType:
		default:
			return nil, fmt.Errorf("%w: %s.%s may only return an error", ErrInvalidSignature, typ, method.Name)
		}
		methods = append(methods, handlerMethod{
			name:      method.Name,
			fn:        method.Func,
			eventType: mtyp.In(1),
			hasError:  mtyp.NumOut() == 1,
		})
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHandlers, typ)
	}
	return methods, nil
}

func isHandlerName(name string) bool {
	if len(name) <= len(handlerPrefix) || name[:len(handlerPrefix)] != handlerPrefix {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[len(handlerPrefix):])
	return unicode.IsUpper(r)
}

func (m handlerMethod) call(owner, event any) error {
	out := m.fn.Call([]reflect.Value{reflect.ValueOf(owner), reflect.ValueOf(event)})
	if !m.hasError || out[0].IsNil() {
		return nil
	}
	return out[0].Interface().(error)
}

func multiDescriptors(method handlerMethod, ownerType reflect.Type, opt Options) []eventbus.Descriptor {
	handler := eventbus.Multi(func(owner any, event eventbus.MultiEvent) error {
		if reflect.TypeOf(owner) != ownerType {
			return fmt.Errorf("%w: expected %s, got %T", eventbus.ErrOwnerMismatch, ownerType, owner)
		}
		return method.call(owner, event)
	}, opt.Types...).WithPriority(opt.Priority)
	for _, filter := range opt.Filters {
		handler = handler.When(func(owner any, event eventbus.MultiEvent) bool {
			return filter(owner, event.Event())
		})
	}
	return handler.Descriptors()
}

type methodDescriptor struct {
	method    handlerMethod
	ownerType reflect.Type
	priority  int
	filters   []Filter
}

func (d *methodDescriptor) Matches(event any) bool {
	return reflect.TypeOf(event).AssignableTo(d.method.eventType)
}

func (d *methodDescriptor) Invoke(owner, event any) error {
	if event == nil || !reflect.TypeOf(event).AssignableTo(d.method.eventType) {
		return fmt.Errorf("%w: expected %s, got %T", eventbus.ErrEventMismatch, d.method.eventType, event)
	}
	if reflect.TypeOf(owner) != d.ownerType {
		return fmt.Errorf("%w: expected %s, got %T", eventbus.ErrOwnerMismatch, d.ownerType, owner)
	}
	for _, filter := range d.filters {
		if !filter(owner, event) {
			return nil
		}
	}
	return d.method.call(owner, event)
}

func (d *methodDescriptor) Priority() int {
	return d.priority
}
