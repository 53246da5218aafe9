package progress

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO of progress events for one import session.
// The producer is the import pipeline; consumers are progress streams. Push
// never blocks, so a slow or absent consumer cannot stall an import.
type Queue struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

func newQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

func (q *Queue) Push(event Event) {
	q.mu.Lock()
	q.events = append(q.events, event)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop returns the next event, waiting up to wait for one to arrive. The
// second result distinguishes a timeout (false, nil error) from context
// cancellation; timeouts are how stream keepalives get scheduled.
func (q *Queue) Pop(ctx context.Context, wait time.Duration) (Event, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			event := q.events[0]
			q.events = q.events[1:]
			q.mu.Unlock()
			return event, true, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Event{}, false, ctx.Err()
		case <-timer.C:
			return Event{}, false, nil
		case <-q.notify:
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
