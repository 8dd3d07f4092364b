package quiz

import (
	"context"
	"sync"
	"time"
)

// countdown calls tick once per interval on its own goroutine until tick
// returns false, ctx ends, or it is cancelled.
type countdown struct {
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func startCountdown(ctx context.Context, interval time.Duration, tick func(context.Context) bool) *countdown {
	c := &countdown{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.quit:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !tick(ctx) {
					return
				}
			}
		}
	}()

	return c
}

// cancel asks the goroutine to exit without waiting for it.
func (c *countdown) cancel() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.quit) })
}

// stop cancels and blocks until the goroutine has exited.
func (c *countdown) stop() {
	if c == nil {
		return
	}
	c.cancel()
	<-c.done
}
