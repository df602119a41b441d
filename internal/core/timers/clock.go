// Package timers provides the named cancellable clocks that drive the
// session runner, the breathing cycle and the pomodoro timer. Each
// logical clock is a distinct instance; two live tickers of the same
// clock can never coexist because Start always cancels the previous
// run before arming a new one.
package timers

import (
	"sync"
	"time"
)

type Clock struct {
	name     string
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// New returns a clock ticking at one-second resolution.
func New(name string) *Clock {
	return NewWithInterval(name, time.Second)
}

// NewWithInterval exists for tests that cannot wait out real seconds.
func NewWithInterval(name string, interval time.Duration) *Clock {
	return &Clock{name: name, interval: interval}
}

func (c *Clock) Name() string {
	return c.name
}

// Start arms the clock, cancelling any prior instance first. The tick
// callback runs once per interval until Stop or the next Start.
// Pausing is the caller's concern: a paused tick must be a no-op
// inside the callback, the clock itself keeps firing.
func (c *Clock) Start(tick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	stop := make(chan struct{})
	c.stop = stop

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Clock) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}
