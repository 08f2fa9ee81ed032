package eventbus

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"testing"
	"time"
)

type producerEvent struct {
	producer int
	seq      int
}

func TestLoop_ConcurrentProducers(t *testing.T) {
	const (
		producers = 8
		posts     = 200
	)
	bus := newTestBus(t)
	seen := map[int][]int{}
	require.NoError(t, bus.Register(new(int), Func(func(event producerEvent) error {
		seen[event.producer] = append(seen[event.producer], event.seq)
		return nil
	})))
	loop, err := NewLoop(context.Background(), bus)
	require.NoError(t, err)

	var group errgroup.Group
	for p := range producers {
		group.Go(func() error {
			var last error
			for i := range posts {
				last = loop.Post(producerEvent{producer: p, seq: i}).Await(time.Second)
				if last != nil {
					return last
				}
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
	require.NoError(t, loop.AwaitStop(time.Second))

	require.Len(t, seen, producers)
	for p, seqs := range seen {
		require.Len(t, seqs, posts, "Producer %d", p)
		for i, seq := range seqs {
			assert.Equal(t, i, seq, "Events from one producer should be dispatched in order")
		}
	}
}

func TestLoop_Do(t *testing.T) {
	loop, err := NewLoop(context.Background(), newTestBus(t))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, loop.AwaitStop(time.Second))
	}()

	errExpected := errors.New("expected")
	assert.ErrorIs(t, loop.Do(func(*Bus) error { return errExpected }).Await(time.Second), errExpected)
	assert.ErrorIs(t, loop.Do(func(*Bus) error { panic("loop panic") }).Await(time.Second), ErrHandlerPanic)
	assert.Error(t, loop.Do(nil).Await(time.Second))

	owner := new(countingOwner)
	require.NoError(t, loop.Register(owner, Method((*countingOwner).OnString)).Await(time.Second))
	require.NoError(t, loop.Post("x").Await(time.Second))
	assert.ErrorIs(t, loop.Post(nil).Await(time.Second), ErrNilEvent)
	require.NoError(t, loop.Unregister(owner).Await(time.Second))
	assert.ErrorIs(t, loop.Unregister(owner).Await(time.Second), ErrUnregisteredOwner)
	assert.NoError(t, loop.Do(func(bus *Bus) error {
		assert.Equal(t, 1, owner.handled)
		assert.Equal(t, 0, bus.Handlers())
		return nil
	}).Await(time.Second))
}

func TestLoop_Stopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop, err := NewLoop(ctx, newTestBus(t))
	require.NoError(t, err)
	cancel()
	require.NoError(t, loop.AwaitStop(time.Second))
	assert.ErrorIs(t, loop.Post("late").Await(time.Second), ErrLoopStopped)
}

func TestNewLoop_InvalidInput(t *testing.T) {
	_, err := NewLoop(context.Background(), nil)
	assert.Error(t, err)
}
