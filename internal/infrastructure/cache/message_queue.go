package cache

import (
	"sync"

	"github.com/Conte777/NewsFlow/services/music-service/internal/domain"
	"github.com/eapache/queue"
)

// MessageQueue is an unbounded FIFO of pushed messages.
// Push never blocks on the consumer; Pop returns false when empty.
type MessageQueue struct {
	mu    sync.Mutex
	items *queue.Queue
}

// NewMessageQueue creates an empty queue
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{items: queue.New()}
}

// Push appends a message
func (q *MessageQueue) Push(msg domain.RemoteMessage) {
	q.mu.Lock()
	q.items.Add(msg)
	q.mu.Unlock()
}

// Pop removes the oldest message if there is one
func (q *MessageQueue) Pop() (domain.RemoteMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Length() == 0 {
		return domain.RemoteMessage{}, false
	}
	return q.items.Remove().(domain.RemoteMessage), true
}

// Len returns the number of buffered messages
func (q *MessageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

var _ domain.MessageQueue = (*MessageQueue)(nil)
