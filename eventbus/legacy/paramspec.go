package legacy

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/superbus/assert"
)

var (
	ErrUnexpectedTypeParam = errors.New("unexpected parameter type")
	ErrNotEnoughParams     = errors.New("not enough parameters")
)

// AssertParam is the most basic way to assert [Param] type, and is most useful when there are only 1 or 2 parameters.
func AssertParam[T any](param Param) (T, bool) {
	val, ok := param.(T)
	return val, ok
}

// ParamAssertion is a function that asserts constraints of a [Param].
// The pos parameter is informational and usually should not be the subject of an assertion.
type ParamAssertion func(pos int, p Param) error

// And chains assertions into one [ParamAssertion], stopping at the first error.
func (a ParamAssertion) And(other ParamAssertion, more ...ParamAssertion) ParamAssertion {
	chain := append([]ParamAssertion{a, other}, more...)
	return func(pos int, p Param) error {
		for _, next := range chain {
			if err := next(pos, p); err != nil {
				return err
			}
		}
		return nil
	}
}

// AnyPass passes if any of the given assertions pass.
// All errors are returned if none pass, which is most useful if a [Param] can have one of multiple types.
func AnyPass(assertions ...ParamAssertion) ParamAssertion {
	return func(pos int, p Param) error {
		errs := assert.CollectErrors("; ")
		for _, assertion := range assertions {
			err := assertion(pos, p)
			if err == nil {
				return nil
			}
			errs.Add(err)
		}
		return errs.Result()
	}
}

// IsType asserts that a [Param] is of the expected type.
func IsType[T any]() ParamAssertion {
	return func(pos int, p Param) error {
		if _, ok := p.(T); !ok {
			var expected T
			return fmt.Errorf("%w: expected %T at position %d, but got %T", ErrUnexpectedTypeParam, expected, pos, p)
		}
		return nil
	}
}

func notNil(pos int, p Param) error {
	if p == nil {
		return fmt.Errorf("%w: parameter %d is nil", ErrUnexpectedTypeParam, pos)
	}
	return nil
}

// AssertAndStore asserts that the [Param] is of the expected type, and then stores its value in target.
// The target parameter cannot be a nil pointer.
func AssertAndStore[T any](target *T) ParamAssertion {
	if target == nil {
		return func(pos int, _ Param) error {
			return fmt.Errorf("target for param %d is nil pointer", pos)
		}
	}
	return ParamAssertion(notNil).And(IsType[T](), func(_ int, p Param) error {
		*target = p.(T)
		return nil
	})
}

// Optional applies ifNotNil only when the [Param] at this position is not nil.
func Optional(ifNotNil ParamAssertion) ParamAssertion {
	return func(pos int, p Param) error {
		if p == nil {
			return nil
		}
		return ifNotNil(pos, p)
	}
}

// ParamSpec uses all given [ParamAssertion] to create a function that checks a whole parameter list.
// The assertion at position 0 will be applied to the [Param] at position 0, and so on.
// A nil assertion skips its position, and extra parameters or assertions are ignored.
// If there are fewer than minParams parameters, then [ErrNotEnoughParams] is returned without running any assertion.
//
// The returned error joins every failed assertion.
func ParamSpec(minParams int, assertions ...ParamAssertion) func(params []Param) error {
	return func(params []Param) error {
		if len(params) < minParams {
			return fmt.Errorf("%w: expected at least %d parameters, got %d", ErrNotEnoughParams, minParams, len(params))
		}
		errs := assert.CollectErrors()
		for i := 0; i < len(assertions) && i < len(params); i++ {
			if assertions[i] == nil {
				continue
			}
			errs.Add(assertions[i](i, params[i]))
		}
		return errs.Result()
	}
}

// MapParam maps a single required parameter to a target variable, which is common for handlers.
func MapParam[T any](target *T, params []Param) error {
	return ParamSpec(1, AssertAndStore(target))(params)
}

// Spec applies a [ParamSpec] to the parameters of the Envelope.
func (e *Envelope) Spec(minParams int, assertions ...ParamAssertion) error {
	return ParamSpec(minParams, assertions...)(e.Params)
}
