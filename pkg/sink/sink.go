// Package sink delivers classification results to consumers without ever
// blocking the producer.
package sink

import (
	"sync"

	"github.com/pion/emotioncam/pkg/inference"
)

// Sink receives results in the order the pipeline produced them.
// Deliver must not block.
type Sink interface {
	Deliver(r inference.Result)
}

// DeliverFunc is a proxy type to use a function as a Sink. The function runs
// on the producer's goroutine, so it must return quickly.
type DeliverFunc func(r inference.Result)

func (f DeliverFunc) Deliver(r inference.Result) {
	f(r)
}

// Queue is an unbounded FIFO drained by a single delivery goroutine, which
// hands each result to a consumer callback in order.
type Queue struct {
	consume func(inference.Result)

	mu      sync.Mutex
	cond    *sync.Cond
	pending []inference.Result
	closed  bool
	done    chan struct{}
}

// Func returns a Queue that calls fn for every result on its own goroutine.
func Func(fn func(inference.Result)) *Queue {
	q := &Queue{
		consume: fn,
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Deliver enqueues r. Results delivered after Close are dropped.
func (q *Queue) Deliver(r inference.Result) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.pending = append(q.pending, r)
	q.cond.Signal()
}

// Len returns the number of results waiting for the consumer.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting results and blocks until the queued ones have been
// consumed. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		for _, r := range batch {
			q.consume(r)
		}
	}
}
