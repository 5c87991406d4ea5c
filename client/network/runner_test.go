package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunner_DeliversOnDrain(t *testing.T) {
	r := NewQueueRunner(NewQueueRunnerOptions{})
	defer r.Stop()

	var results []error
	boom := errors.New("boom")
	r.Run(func(ctx context.Context) error { return nil }, func(err error) { results = append(results, err) })
	r.Run(func(ctx context.Context) error { return boom }, func(err error) { results = append(results, err) })
	r.Wait()

	// nothing runs until the loop drains
	assert.Empty(t, results)
	assert.Equal(t, 2, r.Drain())
	require.Len(t, results, 2)
	assert.Contains(t, results, boom)
	assert.Contains(t, results, error(nil))
	assert.Equal(t, 0, r.Drain())
}

func TestQueueRunner_TimeoutCancelsJob(t *testing.T) {
	r := NewQueueRunner(NewQueueRunnerOptions{Timeout: 10 * time.Millisecond})
	defer r.Stop()

	var got error
	r.Run(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, func(err error) { got = err })
	r.Wait()
	r.Drain()
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestQueueRunner_WaitsWhenQueueFull(t *testing.T) {
	r := NewQueueRunner(NewQueueRunnerOptions{Queue: queue.NewInMemoryQueue(1)})
	defer r.Stop()

	delivered := 0
	for i := 0; i < 3; i++ {
		r.Run(func(ctx context.Context) error { return nil }, func(error) { delivered++ })
	}
	require.Eventually(t, func() bool {
		r.Drain()
		return delivered == 3
	}, time.Second, time.Millisecond)
}

func TestQueueRunner_RunAfterStop(t *testing.T) {
	r := NewQueueRunner(NewQueueRunnerOptions{})
	require.NoError(t, r.Stop())

	called := false
	var got error
	r.Run(func(ctx context.Context) error {
		called = true
		return nil
	}, func(err error) { got = err })
	r.Drain()
	assert.False(t, called)
	assert.ErrorIs(t, got, ErrManagerStopped)
}
