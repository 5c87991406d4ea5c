package queue

import (
	"errors"
	"sync"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer is exhausted.
	ErrQueueFull = errors.New("queue is full")
	// ErrQueueEmpty is returned by Dequeue when there is nothing to read.
	ErrQueueEmpty = errors.New("queue is empty")
)

// InMemoryQueue implements an in-memory queue backed by a buffered channel.
// Enqueue never blocks: producers on network goroutines must not stall
// when the render loop falls behind.
type InMemoryQueue struct {
	ch   chan interface{}
	lock sync.Mutex
}

// NewInMemoryQueue creates a new queue holding at most size items.
func NewInMemoryQueue(size int) *InMemoryQueue {
	return &InMemoryQueue{
		ch: make(chan interface{}, size),
	}
}

// Enqueue adds an item to the end of the queue.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue removes and returns the item from the front of the queue.
func (q *InMemoryQueue) Dequeue() (interface{}, error) {
	select {
	case item := <-q.ch:
		return item, nil
	default:
		return nil, ErrQueueEmpty
	}
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads all pending messages in the queue
func (q *InMemoryQueue) ReadAllMessages() ([]interface{}, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	n := len(q.ch)
	messages := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		select {
		case item := <-q.ch:
			messages = append(messages, item)
		default:
			return messages, nil
		}
	}

	return messages, nil
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue) ClearQueue() error {
	q.lock.Lock()
	defer q.lock.Unlock()

	for {
		select {
		case <-q.ch:
		default:
			return nil
		}
	}
}
