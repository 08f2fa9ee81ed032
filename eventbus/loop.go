package eventbus

import (
	"context"
	"errors"
	"github.com/saylorsolutions/superbus/structures/queue"
	"github.com/saylorsolutions/superbus/syncx"
	"runtime/debug"
	"time"
)

// Loop owns a [Bus] on a dedicated goroutine, so it can be used from many goroutines.
// Work submitted to a Loop runs one item at a time, in the order it was accepted, so delivery stays single-threaded and ordered.
type Loop struct {
	bus  *Bus
	work *queue.ChannelQueue[*loopTask]
	done chan struct{}
}

type loopTask struct {
	fn     func(bus *Bus) error
	result syncx.Future[error]
}

// NewLoop starts a [Loop] for bus.
// The bus must not be used directly after this, except from functions passed to [Loop.Do].
// Cancelling ctx stops the Loop once the work accepted so far has run.
func NewLoop(ctx context.Context, bus *Bus, opts ...queue.ChannelQueueOption) (*Loop, error) {
	if bus == nil {
		return nil, errors.New("nil bus")
	}
	work, err := queue.NewChannelQueue[*loopTask](ctx, opts...)
	if err != nil {
		return nil, err
	}
	l := &Loop{
		bus:  bus,
		work: work,
		done: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *Loop) run() {
	defer close(l.done)
	for task := range l.work.C {
		task.result.Resolve(l.exec(task.fn))
	}
}

func (l *Loop) exec(fn func(bus *Bus) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn(l.bus)
}

// Do runs fn with the [Bus] on the Loop goroutine.
// The returned [syncx.Future] resolves with the error returned by fn, or [ErrLoopStopped] if the Loop is stopping.
//
// Don't await the result from inside a handler or another Do function, because that would wait on the Loop goroutine itself.
func (l *Loop) Do(fn func(bus *Bus) error) syncx.Future[error] {
	if fn == nil {
		return syncx.Resolved(errors.New("nil loop function"))
	}
	result := syncx.NewFuture[error]()
	if !l.work.Push(&loopTask{fn: fn, result: result}) {
		return syncx.Resolved(ErrLoopStopped)
	}
	return result
}

// Post submits event to be posted on the Loop goroutine.
// The returned [syncx.Future] resolves after the event has been fully dispatched, with the result of [Bus.Post].
func (l *Loop) Post(event any) syncx.Future[error] {
	return l.Do(func(bus *Bus) error {
		return bus.Post(event)
	})
}

// Register is the [Loop] equivalent of [Bus.Register].
func (l *Loop) Register(owner any, descriptors ...Descriptor) syncx.Future[error] {
	return l.Do(func(bus *Bus) error {
		return bus.Register(owner, descriptors...)
	})
}

// Unregister is the [Loop] equivalent of [Bus.Unregister].
func (l *Loop) Unregister(owner any) syncx.Future[error] {
	return l.Do(func(bus *Bus) error {
		return bus.Unregister(owner)
	})
}

// Stop signals the Loop to stop accepting work, and returns without waiting.
// Work that was already accepted still runs.
func (l *Loop) Stop() {
	l.work.Stop()
}

// AwaitStop stops the Loop and waits for accepted work to finish, or for the timeout to elapse.
// Returns [context.DeadlineExceeded] if the timeout was reached first.
func (l *Loop) AwaitStop(timeout time.Duration) error {
	l.Stop()
	wait, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	select {
	case <-l.done:
		return nil
	case <-wait.Done():
		return wait.Err()
	}
}
