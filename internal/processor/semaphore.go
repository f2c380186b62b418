package processor

import (
	"context"
	"sync"
)

// semaphore bounds the number of pipeline runs in flight
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(capacity int) *semaphore {
	return &semaphore{
		ch: make(chan struct{}, capacity),
	}
}

// acquire blocks until a slot is free or ctx ends. The returned func
// releases the slot and is safe to call more than once.
func (s *semaphore) acquire(ctx context.Context) (func(), error) {
	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-s.ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *semaphore) capacity() int {
	return cap(s.ch)
}

// inFlight reports how many slots are taken.
func (s *semaphore) inFlight() int {
	return len(s.ch)
}
