package queue

// Queue represents a basic FIFO queue shared between producer goroutines
// and a single consumer.
type Queue interface {
	Enqueue(item interface{}) error
	Dequeue() (interface{}, error)
	Size() int
	ReadAllMessages() ([]interface{}, error)
	ClearQueue() error
}
