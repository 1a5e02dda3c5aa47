// Package rate measures how often events happen.
package rate

import (
	"sync"
	"time"
)

// Tracker computes an event rate over a sliding time window.
type Tracker struct {
	windowSize time.Duration

	mu    sync.Mutex
	times []time.Time
}

func NewTracker(windowSize time.Duration) *Tracker {
	return &Tracker{
		windowSize: windowSize,
	}
}

// Add records an event at timestamp. Timestamps must not go backwards.
func (t *Tracker) Add(timestamp time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.times = append(t.times, timestamp)

	// Remove old entries outside the window
	cutoff := timestamp.Add(-t.windowSize)
	i := 0
	for ; i < len(t.times); i++ {
		if t.times[i].After(cutoff) {
			break
		}
	}
	t.times = t.times[i:]
}

// Rate returns events per second over the window, 0 until two events are
// recorded.
func (t *Tracker) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.times) < 2 {
		return 0
	}
	duration := t.times[len(t.times)-1].Sub(t.times[0]).Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(len(t.times)-1) / duration
}
