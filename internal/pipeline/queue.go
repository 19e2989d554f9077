package pipeline

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"barriometrics/server/internal/aggregator"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// GroupQueue is an in-memory queue of aggregation groups awaiting snapshot
// computation. Groups carry no ordering dependency between each other, so
// any number of workers may drain it concurrently.
type GroupQueue struct {
	items   chan aggregator.Group
	maxSize int
	closed  bool
	mu      sync.RWMutex
	logger  *logrus.Logger
}

// NewGroupQueue creates a new group queue with the specified buffer size.
func NewGroupQueue(bufferSize int, logger *logrus.Logger) *GroupQueue {
	return &GroupQueue{
		items:   make(chan aggregator.Group, bufferSize),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a group to the queue.
func (q *GroupQueue) Push(group aggregator.Group) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- group:
		q.logger.WithFields(logrus.Fields{
			"area_id":        group.AreaID,
			"operation_type": group.OperationType,
			"listings":       len(group.Listings),
		}).Debug("Pushed group to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Items exposes the receive side of the queue for workers. The channel is
// closed when the queue is closed and drained.
func (q *GroupQueue) Items() <-chan aggregator.Group {
	return q.items
}

// Close prevents new groups from being added. Workers still drain whatever
// is buffered.
func (q *GroupQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	return nil
}

// Len returns the current number of buffered groups.
func (q *GroupQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *GroupQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
