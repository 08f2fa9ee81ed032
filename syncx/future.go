package syncx

import (
	"context"
	"sync"
	"time"
)

// Future is the result of work handed to another goroutine.
// Only the first call to Resolve has any effect, and every Await call after that returns the same value.
type Future[T any] interface {
	Resolve(val T)
	// Await blocks until the Future is resolved.
	// If a timeout is given and elapses first, the zero value of T is returned.
	Await(timeout ...time.Duration) T
	// AwaitContext blocks until the Future is resolved or ctx is done, in which case ctx.Err() is returned.
	AwaitContext(ctx context.Context) (T, error)
}

func NewFuture[T any]() Future[T] {
	return &future[T]{
		done: make(chan struct{}),
	}
}

// Resolved returns a Future that already holds val.
func Resolved[T any](val T) Future[T] {
	f := NewFuture[T]()
	f.Resolve(val)
	return f
}

type future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
}

func (f *future[T]) Resolve(val T) {
	f.once.Do(func() {
		f.val = val
		close(f.done)
	})
}

func (f *future[T]) Await(timeout ...time.Duration) T {
	if len(timeout) == 0 || timeout[0] <= 0 {
		<-f.done
		return f.val
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout[0])
	defer cancel()
	val, _ := f.AwaitContext(ctx)
	return val
}

func (f *future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	default:
	}
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
