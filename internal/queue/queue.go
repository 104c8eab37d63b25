package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/voicesim/internal/command"
)

var (
	// ErrTimeout is returned by Dequeue when no item arrived within the timeout.
	ErrTimeout = errors.New("no item available")

	// ErrQueueClosed is returned when operations are attempted on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueEmpty is returned by Peek on an empty queue
	ErrQueueEmpty = errors.New("queue is empty")
)

// CommandQueue is a thread-safe, unbounded FIFO of utterances. Each item is
// handed to exactly one dequeuer exactly once.
type CommandQueue struct {
	mu    sync.Mutex
	items []command.Utterance

	// notEmpty carries at most one pending wake-up. Enqueue posts to it and a
	// dequeuer that leaves items behind re-posts, so a wake-up is never lost.
	notEmpty chan struct{}
	done     chan struct{}

	closed bool
	stats  Stats
}

// Stats tracks queue activity.
type Stats struct {
	TotalEnqueued int64
	TotalDequeued int64
	CurrentSize   int
	PeakSize      int
	LastEnqueue   time.Time
	LastDequeue   time.Time
}

// New creates an empty command queue.
func New() *CommandQueue {
	return &CommandQueue{
		notEmpty: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Enqueue appends u to the tail of the queue. It never blocks.
func (q *CommandQueue) Enqueue(u command.Utterance) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.items = append(q.items, u)
	q.stats.TotalEnqueued++
	q.stats.LastEnqueue = time.Now()
	if len(q.items) > q.stats.PeakSize {
		q.stats.PeakSize = len(q.items)
	}

	q.signal()
	return nil
}

// Dequeue removes and returns the oldest utterance. It waits up to timeout
// for one to arrive and returns ErrTimeout if none did. A cancelled context
// returns ctx.Err(); a closed, drained queue returns ErrQueueClosed.
func (q *CommandQueue) Dequeue(ctx context.Context, timeout time.Duration) (command.Utterance, error) {
	if u, ok, err := q.tryDequeue(); ok || err != nil {
		return u, err
	}
	if timeout <= 0 {
		return command.Utterance{}, ErrTimeout
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return command.Utterance{}, ctx.Err()
		case <-timer.C:
			// One last look: an item may have landed while the timer fired.
			if u, ok, err := q.tryDequeue(); ok || err != nil {
				return u, err
			}
			return command.Utterance{}, ErrTimeout
		case <-q.notEmpty:
		case <-q.done:
		}

		if u, ok, err := q.tryDequeue(); ok || err != nil {
			return u, err
		}
	}
}

// tryDequeue pops the head without waiting.
func (q *CommandQueue) tryDequeue() (command.Utterance, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			return command.Utterance{}, false, ErrQueueClosed
		}
		return command.Utterance{}, false, nil
	}

	u := q.items[0]
	q.items[0] = command.Utterance{}
	q.items = q.items[1:]

	q.stats.TotalDequeued++
	q.stats.LastDequeue = time.Now()

	if len(q.items) > 0 {
		q.signal()
	}
	return u, true, nil
}

// signal posts a wake-up without blocking. Callers hold q.mu.
func (q *CommandQueue) signal() {
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

// Peek returns the oldest utterance without removing it.
func (q *CommandQueue) Peek() (command.Utterance, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		if q.closed {
			return command.Utterance{}, ErrQueueClosed
		}
		return command.Utterance{}, ErrQueueEmpty
	}
	return q.items[0], nil
}

// Size returns the current number of queued utterances.
func (q *CommandQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Stats returns a snapshot of queue statistics.
func (q *CommandQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = len(q.items)
	return stats
}

// DrainTo moves up to len(dst) queued utterances into dst, oldest first, and
// returns how many were moved.
func (q *CommandQueue) DrainTo(dst []command.Utterance) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(dst, q.items)
	for i := 0; i < n; i++ {
		q.items[i] = command.Utterance{}
	}
	q.items = q.items[n:]

	if n > 0 {
		q.stats.TotalDequeued += int64(n)
		q.stats.LastDequeue = time.Now()
	}
	return n
}

// Close stops accepting new utterances and wakes any waiting dequeuers.
// Utterances already queued can still be dequeued. Close is idempotent.
func (q *CommandQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)
	return nil
}
