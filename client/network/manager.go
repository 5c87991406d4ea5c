package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/queue"
)

const (
	DefaultPollInterval      = 2 * time.Second
	DefaultSnapshotQueueSize = 16
)

// Snapshot is one poll of the simulation.
type Snapshot struct {
	Grid      *types.Grid
	Entities  []types.EntitySummary
	Err       error
	FetchedAt time.Time
}

// Manager polls the simulation in the background and queues snapshots for
// the render loop.
type Manager struct {
	sim       Simulation
	snapshots queue.Queue
	interval  time.Duration
	refresh   chan struct{}
	logger    *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

type NewManagerOptions struct {
	Simulation   Simulation
	Queue        queue.Queue
	PollInterval time.Duration
	Logger       *log.Logger
}

func NewManager(opts NewManagerOptions) (*Manager, error) {
	if opts.Simulation == nil {
		return nil, fmt.Errorf("simulation is required")
	}
	q := opts.Queue
	if q == nil {
		q = queue.NewInMemoryQueue(DefaultSnapshotQueueSize)
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		sim:       opts.Simulation,
		snapshots: q,
		interval:  interval,
		refresh:   make(chan struct{}, 1),
		logger:    logger.With("component", "network"),
		wg:        &sync.WaitGroup{},
	}, nil
}

// Start launches the poller. The first poll happens immediately.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return fmt.Errorf("network manager already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go func(ctx context.Context) {
		defer m.wg.Done()
		m.pollLoop(ctx)
	}(ctx)

	m.logger.Info("Polling simulation every %s", m.interval)
	return nil
}

func (m *Manager) pollLoop(ctx context.Context) {
	m.poll(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		case <-m.refresh:
			m.poll(ctx)
		}
	}
}

// Poll fetches one snapshot and queues it.
func (m *Manager) poll(ctx context.Context) {
	snap := m.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	if err := m.snapshots.Enqueue(snap); err != nil {
		m.logger.Warn("Dropping snapshot: %v", err)
	}
}

func (m *Manager) fetch(ctx context.Context) Snapshot {
	reqCtx, cancel := context.WithTimeout(ctx, DefaultRequestTimeout)
	defer cancel()

	snap := Snapshot{FetchedAt: time.Now()}
	grid, err := m.sim.FetchGrid(reqCtx)
	if err != nil {
		snap.Err = describe(err)
		return snap
	}
	entities, err := m.sim.FetchEntities(reqCtx)
	if err != nil {
		snap.Err = describe(err)
		return snap
	}
	snap.Grid = grid
	snap.Entities = entities
	m.logger.Trace("Fetched %d entities", len(entities))
	return snap
}

// Refresh asks the poller for an immediate poll. It never blocks.
func (m *Manager) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// Drain hands every queued snapshot to fn in arrival order. It must be
// called from the render loop.
func (m *Manager) Drain(fn func(Snapshot)) int {
	items, err := m.snapshots.ReadAllMessages()
	if err != nil {
		m.logger.Error("Failed to read snapshots: %v", err)
		return 0
	}
	n := 0
	for _, item := range items {
		snap, ok := item.(Snapshot)
		if !ok {
			m.logger.Warn("Ignoring unexpected queue item %T", item)
			continue
		}
		fn(snap)
		n++
	}
	return n
}

// Stop stops the poller and clears the snapshot queue.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		m.logger.Warn("Network manager already stopped")
		return nil
	}
	cancel()

	m.logger.Debug("Waiting for poller to stop")
	m.wg.Wait()
	if err := m.snapshots.ClearQueue(); err != nil {
		return fmt.Errorf("failed to clear snapshot queue: %v", err)
	}
	m.logger.Info("Network manager stopped")
	return nil
}

func (m *Manager) Simulation() Simulation {
	return m.sim
}
