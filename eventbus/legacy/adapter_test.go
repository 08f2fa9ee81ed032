package legacy

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/superbus/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"testing"
	"time"
)

const (
	testEvent           Event = 5
	testOtherEvent      Event = 6
	testNotHandledEvent Event = 99
	testAwaitTimeout          = 100 * time.Millisecond
)

func TestAdapter_Dispatch(t *testing.T) {
	var (
		errorReceived, handlerCalled bool
	)
	adapter := testAdapter(t, &handlerCalled, &errorReceived)

	adapter.Dispatch(testEvent, "A message")
	assert.False(t, errorReceived, "Should not receive an error")
	assert.True(t, handlerCalled, "Handler should have been called")
}

func TestAdapter_Dispatch_MissingEvent(t *testing.T) {
	var errs []error
	adapter := testAdapter(t, nil, nil)
	require.NoError(t, adapter.RegisterErrorHandler("error-handler", func(err error) {
		errs = append(errs, err)
	}))

	err := adapter.DispatchResult(testNotHandledEvent).Await(testAwaitTimeout)
	assert.ErrorIs(t, err, ErrNoHandler, "Should be rejected because there's no handler")

	err = adapter.DispatchResult(EventNone, "A message").Await(testAwaitTimeout)
	assert.ErrorIs(t, err, ErrInvalidEvent, "Should be rejected because an invalid event is used")

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrNoHandler)
	assert.ErrorIs(t, errs[1], ErrInvalidEvent)
}

func TestAdapter_DispatchResult(t *testing.T) {
	var (
		errorReceived, handlerCalled bool
	)
	adapter := testAdapter(t, &handlerCalled, &errorReceived)

	err := adapter.DispatchResult(testEvent, "A message").Await(testAwaitTimeout)
	assert.NoError(t, err)
	assert.False(t, errorReceived, "Should not receive an error")
	assert.True(t, handlerCalled, "Handler should have been called")

	handlerCalled = false
	errorReceived = false
	err = adapter.DispatchResult(testEvent, 5).Await(testAwaitTimeout)
	assert.ErrorIs(t, err, ErrUnexpectedTypeParam, "Should have received the handler's error")
	assert.True(t, errorReceived, "Should receive an error")
	assert.True(t, handlerCalled, "Handler should have been called")
}

func TestAdapter_DispatchResult_FromHandler(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	var (
		order  []string
		result interface{ Await(...time.Duration) error }
	)
	require.NoError(t, adapter.RegisterFunc("outer", testOtherEvent, func(evt Event, params ...Param) error {
		order = append(order, "outer")
		result = adapter.DispatchResult(testEvent, 5)
		order = append(order, "outer done")
		return nil
	}))
	require.NoError(t, adapter.RegisterFunc("inner", testEvent, func(evt Event, params ...Param) error {
		order = append(order, "inner")
		return nil
	}))

	adapter.Dispatch(testOtherEvent)
	assert.Equal(t, []string{"outer", "outer done", "inner"}, order, "Nested dispatches should be delivered after the current one")
	require.NotNil(t, result)
	assert.Error(t, result.Await(testAwaitTimeout), "The test handler rejects an int parameter")
}

func TestAdapter_Dispatch_Ordered(t *testing.T) {
	var seen []string
	adapter := testAdapter(t, nil, nil)
	require.NoError(t, adapter.Register("counter", testEvent, HandlerFunc(func(evt Event, params ...Param) error {
		var msg string
		if err := MapParam(&msg, params); err != nil {
			return err
		}
		seen = append(seen, msg)
		return nil
	})))
	require.NoError(t, adapter.SetHandledExclusive("counter", testEvent))
	require.NoError(t, adapter.RegisterErrorHandler("err-handler", func(err error) {
		t.Errorf("Should not have received an error: %v", err)
	}))

	for i := 0; i < 3; i++ {
		adapter.Dispatch(testEvent, Paramf("%d", i))
	}
	assert.Equal(t, []string{"0", "1", "2"}, seen)
}

func TestAdapter_HandledEvents(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	handler := new(testHandlerImpl)
	require.NoError(t, adapter.Register("multi", testEvent, handler))
	require.NoError(t, adapter.AddHandledEvent("multi", testOtherEvent))

	adapter.Dispatch(testEvent)
	adapter.Dispatch(testOtherEvent)
	assert.Equal(t, 2, handler.count)

	require.NoError(t, adapter.RemoveHandledEvent("multi", testOtherEvent))
	assert.ErrorIs(t, adapter.DispatchResult(testOtherEvent).Await(testAwaitTimeout), ErrNoHandler)
	assert.Equal(t, 2, handler.count)

	assert.Error(t, adapter.AddHandledEvent("missing", testEvent))
	assert.Error(t, adapter.RemoveHandledEvent("missing", testEvent))
	assert.Error(t, adapter.SetHandledExclusive("missing", testEvent))
}

func TestAdapter_Register_Replace(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	first, second := new(testHandlerImpl), new(testHandlerImpl)
	require.NoError(t, adapter.Register("handler", testOtherEvent, first))
	require.NoError(t, adapter.Register("handler", testOtherEvent, second))
	adapter.Dispatch(testOtherEvent)
	assert.Equal(t, 0, first.count, "Replaced handler should not be called")
	assert.Equal(t, 1, second.count)

	assert.Error(t, adapter.Register("nil", testEvent, nil))
	assert.Error(t, adapter.RegisterFunc("nil", testEvent, nil))
	assert.Error(t, adapter.RegisterErrorHandler("nil", nil))
}

func TestAdapter_UnRegister(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	handler := new(testHandlerImpl)
	require.NoError(t, adapter.Register("stopping-handler", testOtherEvent, handler))
	adapter.Dispatch(testOtherEvent)
	adapter.UnRegister("stopping-handler")
	adapter.UnRegister("stopping-handler")

	assert.ErrorIs(t, adapter.DispatchResult(testOtherEvent).Await(testAwaitTimeout), ErrNoHandler)
	assert.Equal(t, 1, handler.count)
	assert.Equal(t, 1, handler.stoppedCount)
	assert.True(t, handler.stopped)
}

func TestAdapter_AddHandler(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	handler := new(testHandlerImpl)
	reg, err := adapter.AddHandler(testOtherEvent, handler)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.ID)

	other, err := adapter.AddHandler(testOtherEvent, new(testHandlerImpl))
	require.NoError(t, err)
	assert.NotEqual(t, reg.ID, other.ID, "Generated IDs should be unique")

	adapter.Dispatch(testOtherEvent)
	reg.Remove()
	adapter.Dispatch(testOtherEvent)
	assert.Equal(t, 1, handler.count)
	assert.True(t, handler.stopped)
}

func TestAdapter_Stop(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	handler := new(testHandlerImpl)
	require.NoError(t, adapter.Register("stopping-handler", testOtherEvent, handler))

	for i := 0; i < 3; i++ {
		adapter.Dispatch(testOtherEvent, fmt.Sprintf("%d", i))
	}
	adapter.Stop()
	adapter.Stop()
	assert.Equal(t, 3, handler.count)
	assert.Equal(t, 1, handler.stoppedCount)
	assert.True(t, handler.stopped)

	assert.ErrorIs(t, adapter.DispatchResult(testOtherEvent).Await(testAwaitTimeout), ErrStopped)
	assert.ErrorIs(t, adapter.Register("late", testOtherEvent, handler), ErrStopped)
}

func TestAdapter_ErrorHandlerFailure(t *testing.T) {
	adapter := testAdapter(t, nil, nil)
	var calls int
	require.NoError(t, adapter.RegisterErrorHandler("panicking", func(err error) {
		calls++
		panic("error handler failed")
	}))
	adapter.DispatchError(errors.New("first"))
	adapter.DispatchErrorf("second %d", 2)
	assert.Equal(t, 2, calls, "Failing error handlers should not cause more errors to be dispatched")
}

func TestAdapter_SharesBus(t *testing.T) {
	bus, err := eventbus.New(eventbus.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	adapter, err := NewAdapter(bus)
	require.NoError(t, err)

	var order []string
	require.NoError(t, bus.Register(new(int), eventbus.Func(func(env *Envelope) error {
		var msg string
		if err := env.Spec(1, AssertAndStore(&msg)); err != nil {
			return err
		}
		order = append(order, "typed "+msg)
		return nil
	}).WithPriority(1)))
	require.NoError(t, adapter.RegisterFunc("legacy", testEvent, func(evt Event, params ...Param) error {
		order = append(order, "legacy")
		return bus.Post("posted from legacy")
	}))
	require.NoError(t, bus.Register(new(int), eventbus.Func(func(msg string) error {
		order = append(order, msg)
		return nil
	})))

	adapter.Dispatch(testEvent, "hello")
	assert.Equal(t, []string{"typed hello", "legacy", "posted from legacy"}, order)

	_, err = NewAdapter(nil)
	assert.Error(t, err)
}

var _ Handler = (*testHandlerImpl)(nil)

type testHandlerImpl struct {
	count        int
	stoppedCount int
	stopped      bool
}

func (t *testHandlerImpl) HandleEvent(evt Event, params ...Param) error {
	t.count++
	return nil
}

func (t *testHandlerImpl) Stop() {
	t.stoppedCount++
	t.stopped = true
}

func testAdapter(t *testing.T, handlerCalled, errorReceived *bool) *Adapter {
	t.Helper()
	bus, err := eventbus.New(eventbus.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	adapter, err := NewAdapter(bus)
	require.NoError(t, err)
	require.NoError(t, adapter.Register("test-handler", testEvent, HandlerFunc(func(evt Event, params ...Param) error {
		if handlerCalled != nil {
			*handlerCalled = true
		}
		var param string
		return ParamSpec(1,
			AssertAndStore(&param),
		)(params)
	})))
	if errorReceived != nil {
		require.NoError(t, adapter.RegisterErrorHandler("error-handler", testShouldNotFail(errorReceived)))
	}
	return adapter
}

func testShouldNotFail(received *bool) func(err error) {
	return func(err error) {
		*received = true
	}
}
