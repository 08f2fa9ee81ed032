package queue

import (
	"iter"
	"sync"
)

const minGrowth = 8

// Queue is a concurrency-safe FIFO queue backed by a growable ring buffer.
// Popped slots are zeroed, so the Queue never retains references to values that have left it.
type Queue[T any] struct {
	mux  sync.Mutex
	buf  []T
	head int
	size int
}

func NewQueue[T any](initialBuffer ...int) *Queue[T] {
	if len(initialBuffer) > 0 && initialBuffer[0] > 0 {
		return &Queue[T]{buf: make([]T, initialBuffer[0])}
	}
	return &Queue[T]{}
}

// Len gets the length of the Queue
func (q *Queue[T]) Len() int {
	q.mux.Lock()
	defer q.mux.Unlock()
	return q.size
}

// Push will push an item to the tail of the Queue.
func (q *Queue[T]) Push(val T) {
	q.mux.Lock()
	defer q.mux.Unlock()
	q.ensureSpace()
	q.buf[(q.head+q.size)%len(q.buf)] = val
	q.size++
}

func (q *Queue[T]) pushHead(val T) {
	q.mux.Lock()
	defer q.mux.Unlock()
	q.ensureSpace()
	q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
	q.buf[q.head] = val
	q.size++
}

// Pop will pop an item from the head of the Queue.
// False will be returned if the Queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mux.Lock()
	defer q.mux.Unlock()
	var mt T
	if q.size == 0 {
		return mt, false
	}
	val := q.buf[q.head]
	q.buf[q.head] = mt
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	if q.size == 0 {
		q.head = 0
	}
	return val, true
}

// Drain returns an iterator that pops values until the Queue is empty.
// Values pushed while iterating are yielded as well.
func (q *Queue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			val, ok := q.Pop()
			if !ok {
				return
			}
			if !yield(val) {
				return
			}
		}
	}
}

// ensureSpace must be called with the lock held.
func (q *Queue[T]) ensureSpace() {
	if q.size < len(q.buf) {
		return
	}
	newCap := 2 * len(q.buf)
	if newCap < minGrowth {
		newCap = minGrowth
	}
	grown := make([]T, newCap)
	for i := 0; i < q.size; i++ {
		grown[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = grown
	q.head = 0
}
