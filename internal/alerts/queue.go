package alerts

import (
	"sync"

	"github.com/weatherwatch/backend/internal/domain"
)

// queue is an unbounded FIFO of readings. Producers never block and
// nothing is dropped on enqueue; the queue is volatile and its contents
// are discarded on shutdown.
type queue struct {
	mu    sync.Mutex
	items []domain.Reading
}

func (q *queue) push(r domain.Reading) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()
}

func (q *queue) pop() (domain.Reading, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.Reading{}, false
	}
	r := q.items[0]
	q.items = q.items[1:]
	return r, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
