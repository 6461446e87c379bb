package widget

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	typingPerRune = 50 * time.Millisecond
	typingMax     = 2 * time.Second
	revealGap     = 300 * time.Millisecond
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// typingDelay is how long the typing indicator shows before content is
// revealed.
func typingDelay(content string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(content)) * typingPerRune
	return min(d, typingMax)
}

// displayQueue is an unbounded FIFO of transcript sequence numbers waiting
// to be revealed. It has one consumer.
type displayQueue struct {
	mu     sync.Mutex
	items  []int
	notify chan struct{}
}

func newDisplayQueue() *displayQueue {
	return &displayQueue{notify: make(chan struct{}, 1)}
}

func (q *displayQueue) push(seq int) {
	q.mu.Lock()
	q.items = append(q.items, seq)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// next blocks until an item is available or ctx is done.
func (q *displayQueue) next(ctx context.Context) (int, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			seq := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return seq, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return 0, false
		case <-q.notify:
		}
	}
}

func (q *displayQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
