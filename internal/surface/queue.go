package surface

import (
	"context"
	"sync"
)

// Dispatcher runs fn on the goroutine that owns the scene.
type Dispatcher func(fn func())

// Queue is a FIFO Dispatcher drained explicitly by its owner. It serves the
// headless editor and tests.
type Queue struct {
	mu     sync.Mutex
	fns    []func()
	notify chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends fn. It is safe to call from any goroutine.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain runs every queued callback in order and returns how many ran.
// Callbacks posted while draining run in the same call.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.fns) == 0 {
			q.mu.Unlock()
			return n
		}
		fn := q.fns[0]
		q.fns = q.fns[1:]
		q.mu.Unlock()
		fn()
		n++
	}
}

// Wait blocks until at least one callback has been posted, then drains the
// queue.
func (q *Queue) Wait(ctx context.Context) (int, error) {
	for {
		if n := q.Drain(); n > 0 {
			return n, nil
		}
		select {
		case <-q.notify:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Pending reports the number of queued callbacks.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}
