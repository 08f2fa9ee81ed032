package scenario

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/superbus/eventbus"
)

// ErrDeliveryLimit is the fault raised once a run exceeds MaxDeliveries, which stops handlers that post forever.
var ErrDeliveryLimit = errors.New("delivery limit reached")

// MaxDeliveries limits the handler invocations in one [Run].
const MaxDeliveries = 10_000

// actor is the bus owner for a scenario [Owner].
type actor struct {
	name string
	decl Owner
}

type runner struct {
	bus        *eventbus.Bus
	actors     map[string]*actor
	deliveries int
	current    *StepTrace
}

// Run executes the scenario against a new [eventbus.Bus] created with opts.
// Contract errors from steps are recorded in the [Trace] rather than stopping the run.
func Run(s *Scenario, opts ...eventbus.Option) (*Trace, error) {
	if s == nil {
		return nil, errors.New("nil scenario")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	bus, err := eventbus.New(opts...)
	if err != nil {
		return nil, err
	}
	r := &runner{
		bus:    bus,
		actors: make(map[string]*actor, len(s.Owners)),
	}
	bus.AddFaultObserver(r.observe)
	for _, owner := range s.Owners {
		r.actors[owner.Name] = &actor{name: owner.Name, decl: owner}
	}
	for _, owner := range s.Owners {
		if owner.Deferred {
			continue
		}
		if err := r.register(r.actors[owner.Name]); err != nil {
			return nil, err
		}
	}

	trace := &Trace{Name: s.Name}
	for _, step := range s.Steps {
		st := StepTrace{Step: step.String()}
		r.current = &st
		if err := r.exec(step); err != nil {
			st.Err = err.Error()
		}
		trace.Steps = append(trace.Steps, st)
	}
	return trace, nil
}

func (r *runner) exec(step Step) error {
	switch {
	case step.Post != "":
		val, err := parseValue(step.Post)
		if err != nil {
			return err
		}
		return r.bus.Post(val)
	case step.Register != "":
		return r.register(r.actors[step.Register])
	default:
		return r.bus.Unregister(r.actors[step.Unregister])
	}
}

func (r *runner) register(a *actor) error {
	descriptors := make([]eventbus.Descriptor, 0, len(a.decl.Handlers))
	for _, handler := range a.decl.Handlers {
		descriptor, err := r.descriptor(handler)
		if err != nil {
			return fmt.Errorf("owner '%s': %w", a.name, err)
		}
		descriptors = append(descriptors, descriptor)
	}
	return r.bus.Register(a, descriptors...)
}

func (r *runner) descriptor(handler Handler) (eventbus.Descriptor, error) {
	switch handler.Kind {
	case KindString:
		return typed[string](r, handler)
	case KindInt:
		return typed[int](r, handler)
	case KindFloat:
		return typed[float64](r, handler)
	case KindBool:
		return typed[bool](r, handler)
	case KindAny:
		return typed[any](r, handler)
	case KindDead:
		return typed[eventbus.DeadEvent](r, handler)
	default:
		return nil, fmt.Errorf("%w: unknown kind '%s'", ErrInvalidScenario, handler.Kind)
	}
}

func typed[E any](r *runner, handler Handler) (eventbus.Descriptor, error) {
	desc := eventbus.Method(func(a *actor, event E) error {
		return r.perform(a, handler, event)
	}).WithPriority(handler.Priority)
	if handler.When != "" {
		filter, err := parseFilter(handler.When)
		if err != nil {
			return nil, err
		}
		desc = desc.When(func(_ *actor, event E) bool {
			return filter(event)
		})
	}
	return desc, nil
}

func (r *runner) perform(a *actor, handler Handler, event any) error {
	r.deliveries++
	if r.deliveries > MaxDeliveries {
		return fmt.Errorf("%w: %d", ErrDeliveryLimit, MaxDeliveries)
	}
	for _, action := range handler.Actions {
		switch {
		case action.Record:
			r.current.Records = append(r.current.Records, Record{
				Owner: a.name,
				Kind:  handler.Kind,
				Event: formatValue(event),
			})
		case action.Post != "":
			val, err := parseValue(action.Post)
			if err != nil {
				return err
			}
			if err := r.bus.Post(val); err != nil {
				return err
			}
		case action.Fail != "":
			return errors.New(action.Fail)
		case action.Panic != "":
			panic(action.Panic)
		case action.Unregister != "":
			target := a
			if action.Unregister != SelfTarget {
				target = r.actors[action.Unregister]
			}
			if err := r.bus.Unregister(target); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *runner) observe(fault *eventbus.Fault) error {
	var owner string
	if a, ok := fault.Owner.(*actor); ok {
		owner = a.name
	}
	r.current.Faults = append(r.current.Faults, FaultRecord{
		Owner: owner,
		Event: formatValue(fault.Event),
		Err:   fault.Err.Error(),
	})
	return nil
}
