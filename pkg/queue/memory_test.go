package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(4)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(3))

	first, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	rest, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{2, 3}, rest)
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_Full(t *testing.T) {
	q := NewInMemoryQueue(1)
	require.NoError(t, q.Enqueue("a"))
	assert.ErrorIs(t, q.Enqueue("b"), ErrQueueFull)
}

func TestInMemoryQueue_Empty(t *testing.T) {
	q := NewInMemoryQueue(1)
	_, err := q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	msgs, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestInMemoryQueue_ClearQueue(t *testing.T) {
	q := NewInMemoryQueue(8)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	require.NoError(t, q.ClearQueue())
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(100)
	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = q.Enqueue(i*10 + j)
			}
		}(i)
	}
	wg.Wait()

	msgs, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Len(t, msgs, 100)
}
