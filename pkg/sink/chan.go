package sink

import (
	"sync"

	"github.com/pion/emotioncam/pkg/inference"
)

// Chan exposes results on a channel. A slow reader only grows the internal
// queue, the producer never waits.
type Chan struct {
	*Queue
	c    chan inference.Result
	once sync.Once
}

// NewChan creates a Chan whose channel has a buffer of size n.
func NewChan(n int) *Chan {
	c := make(chan inference.Result, n)
	return &Chan{
		Queue: Func(func(r inference.Result) { c <- r }),
		c:     c,
	}
}

// C returns the result channel. It is closed once Close returns.
func (s *Chan) C() <-chan inference.Result {
	return s.c
}

// Close drains the queue into the channel and closes it. Results still queued
// need a reader for Close to return.
func (s *Chan) Close() {
	s.Queue.Close()
	s.once.Do(func() { close(s.c) })
}
