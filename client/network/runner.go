package network

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/queue"
)

// AsyncRunner runs blocking work off the render loop. done is always called
// on the render loop, never on the worker goroutine.
type AsyncRunner interface {
	Run(fn func(ctx context.Context) error, done func(err error))
}

type completion struct {
	done func(err error)
	err  error
}

// QueueRunner runs each job in its own goroutine and hands the completion
// back through a queue that the render loop drains once per tick.
type QueueRunner struct {
	ctx     context.Context
	cancel  context.CancelFunc
	queue   queue.Queue
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *log.Logger
}

type NewQueueRunnerOptions struct {
	// Queue receives completions. Defaults to an in-memory queue.
	Queue queue.Queue
	// Timeout bounds each job. Defaults to DefaultRequestTimeout.
	Timeout time.Duration
	Logger  *log.Logger
}

const DefaultCompletionQueueSize = 256

func NewQueueRunner(opts NewQueueRunnerOptions) *QueueRunner {
	q := opts.Queue
	if q == nil {
		q = queue.NewInMemoryQueue(DefaultCompletionQueueSize)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &QueueRunner{
		ctx:     ctx,
		cancel:  cancel,
		queue:   q,
		timeout: timeout,
		logger:  logger.With("component", "runner"),
	}
}

// Run starts fn in a goroutine. Jobs submitted after Stop complete
// immediately with ErrManagerStopped on the next Drain.
func (r *QueueRunner) Run(fn func(ctx context.Context) error, done func(err error)) {
	if r.ctx.Err() != nil {
		r.enqueue(completion{done: done, err: ErrManagerStopped})
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
		err := fn(ctx)
		cancel()
		r.enqueue(completion{done: done, err: err})
	}()
}

func (r *QueueRunner) enqueue(c completion) {
	for {
		err := r.queue.Enqueue(c)
		if err == nil {
			return
		}
		if !errors.Is(err, queue.ErrQueueFull) {
			r.logger.Error("Failed to enqueue completion: %v", err)
			return
		}
		// the render loop is behind; wait for it to drain
		select {
		case <-r.ctx.Done():
			r.logger.Warn("Dropping completion after stop")
			return
		case <-time.After(time.Millisecond):
		}
	}
}

// Drain delivers every pending completion. It must be called from the
// render loop.
func (r *QueueRunner) Drain() int {
	items, err := r.queue.ReadAllMessages()
	if err != nil {
		r.logger.Error("Failed to read completions: %v", err)
		return 0
	}
	for _, item := range items {
		c, ok := item.(completion)
		if !ok {
			r.logger.Warn("Ignoring unexpected queue item %T", item)
			continue
		}
		if c.done != nil {
			c.done(c.err)
		}
	}
	return len(items)
}

// Pending returns the number of completions waiting for Drain.
func (r *QueueRunner) Pending() int {
	return r.queue.Size()
}

// Stop cancels in-flight jobs and waits for their goroutines to exit.
// Completions still queued are discarded.
func (r *QueueRunner) Stop() error {
	r.cancel()
	r.wg.Wait()
	return r.queue.ClearQueue()
}

// Wait blocks until every in-flight job has enqueued its completion.
func (r *QueueRunner) Wait() {
	r.wg.Wait()
}
