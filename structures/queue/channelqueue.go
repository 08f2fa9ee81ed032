package queue

import (
	"context"
	"fmt"
	"sync"
)

// ChannelQueue is used to create a [Queue] that can be consumed as a channel.
// It creates a worker goroutine to manage sending and receiving.
//
// Producers never block on a slow consumer: values are buffered in the unbounded [Queue] until the consumer reads [ChannelQueue.C].
// Values are delivered in the order they were accepted by the worker.
type ChannelQueue[T any] struct {
	// C is the channel where queue values will be posted.
	// It's closed once the ChannelQueue has stopped and all accepted values have been delivered.
	C       <-chan T
	queue   *Queue[T]
	ctx     context.Context
	stop    context.CancelFunc
	recv    chan T
	disp    chan T
	doStop  sync.Once
	stopped chan struct{}
	// sendMux is held for reading by Push, and for writing by the worker while it takes what's left in recv.
	sendMux sync.RWMutex
}

type channelQueueConfig struct {
	queueInitialBuffer int
	channelSize        int
}

type ChannelQueueOption func(conf *channelQueueConfig) error

// ChannelSize is used to set the buffer size of the input and output channels.
func ChannelSize(size int) ChannelQueueOption {
	return func(conf *channelQueueConfig) error {
		if size < 0 {
			return fmt.Errorf("invalid channel size '%d'", size)
		}
		conf.channelSize = size
		return nil
	}
}

// InitialBuffer is used to set the initial size of the internal [Queue].
func InitialBuffer(size int) ChannelQueueOption {
	return func(conf *channelQueueConfig) error {
		if size < 0 {
			return fmt.Errorf("invalid queue initial buffer size '%d'", size)
		}
		conf.queueInitialBuffer = size
		return nil
	}
}

// NewChannelQueue creates a new [ChannelQueue], and starts a goroutine to keep data flowing.
func NewChannelQueue[T any](ctx context.Context, opts ...ChannelQueueOption) (*ChannelQueue[T], error) {
	conf := new(channelQueueConfig)
	for _, opt := range opts {
		if err := opt(conf); err != nil {
			return nil, err
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		cancel context.CancelFunc
	)
	ctx, cancel = context.WithCancel(ctx)
	cq := &ChannelQueue[T]{
		ctx:     ctx,
		stop:    cancel,
		stopped: make(chan struct{}),
		queue:   NewQueue[T](conf.queueInitialBuffer),
		recv:    make(chan T, conf.channelSize),
		disp:    make(chan T, conf.channelSize),
	}
	cq.C = cq.disp
	go cq.worker()
	return cq, nil
}

func (q *ChannelQueue[T]) worker() {
	defer close(q.stopped)
	defer close(q.disp)
	for {
		head, haveHead := q.queue.Pop()
		if haveHead {
			// Not empty, listen to both.
			select {
			case _new := <-q.recv:
				q.queue.pushHead(head)
				q.queue.Push(_new)
			case q.disp <- head:
				// Dispatched, loop around for next element.
			case <-q.ctx.Done():
				q.queue.pushHead(head)
				q.flush()
				return
			}
			continue
		}
		// Empty, wait for push.
		select {
		case _new := <-q.recv:
			q.queue.Push(_new)
		case <-q.ctx.Done():
			q.flush()
			return
		}
	}
}

// flush accepts anything still sitting in the receive buffer, then delivers the remaining queue to the consumer.
func (q *ChannelQueue[T]) flush() {
	q.sendMux.Lock()
	for {
		select {
		case _new := <-q.recv:
			q.queue.Push(_new)
			continue
		default:
		}
		break
	}
	q.sendMux.Unlock()
	for val := range q.queue.Drain() {
		q.disp <- val
	}
}

// Stop will signal that the goroutine managing the ChannelQueue should clean up and stop operating.
// This is implicitly called when the given context is cancelled.
func (q *ChannelQueue[T]) Stop() {
	q.doStop.Do(func() {
		q.stop()
	})
}

// AwaitStop will call [ChannelQueue.Stop] and wait for all operations to cease before returning.
// The consumer must keep reading [ChannelQueue.C] until it's closed, or this will block.
func (q *ChannelQueue[T]) AwaitStop() {
	q.Stop()
	q.Await()
}

// Await will wait for all [ChannelQueue] operations to cease before returning.
func (q *ChannelQueue[T]) Await() {
	<-q.stopped
}

// Len gets the number of values buffered in the internal [Queue].
func (q *ChannelQueue[T]) Len() int {
	return q.queue.Len()
}

// Push will push an item to the tail of the ChannelQueue.
// False is returned if the ChannelQueue is stopping and the value was not accepted.
// A value that's accepted is always delivered, even if the ChannelQueue is stopped concurrently.
func (q *ChannelQueue[T]) Push(val T) bool {
	q.sendMux.RLock()
	defer q.sendMux.RUnlock()
	if q.ctx.Err() != nil {
		return false
	}
	select {
	case q.recv <- val:
		return true
	case <-q.ctx.Done():
		return false
	}
}
