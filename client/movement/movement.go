// Package movement animates entities along server-provided paths ahead of
// the simulation's confirmation.
package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
)

const DefaultSpeed = constants.MoveSpeed

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrBusy          = errors.New("entity is busy")
	ErrNoPath        = errors.New("no path to target")
)

// Mover submits a move to the simulation.
type Mover interface {
	MoveEntity(ctx context.Context, entityID string, target types.Cell) (*types.MoveResponse, error)
}

// Runner runs blocking work off the render loop and calls done on it.
type Runner interface {
	Run(fn func(ctx context.Context) error, done func(err error))
}

// Controller owns the idle -> moving -> (resyncing) -> idle state machine.
type Controller struct {
	store  *store.Store
	bus    *events.Bus
	mover  Mover
	runner Runner
	speed  float64
	now    func() time.Time
	logger *log.Logger
}

type NewControllerOptions struct {
	Store  *store.Store
	Bus    *events.Bus
	Mover  Mover
	Runner Runner
	// Speed is in cells per second. Defaults to DefaultSpeed.
	Speed  float64
	Now    func() time.Time
	Logger *log.Logger
}

func NewController(opts NewControllerOptions) *Controller {
	speed := opts.Speed
	if speed <= 0 {
		speed = DefaultSpeed
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		store:  opts.Store,
		bus:    opts.Bus,
		mover:  opts.Mover,
		runner: opts.Runner,
		speed:  speed,
		now:    now,
		logger: logger.With("component", "movement"),
	}
}

// Ready reports whether the entity can accept a new command.
func (c *Controller) Ready(id string) bool {
	m, ok := c.store.Sprite(id)
	if !ok {
		return false
	}
	if m.MovementState != store.MovementIdle || !m.IsPositionSynced {
		return false
	}
	if _, ok := c.store.Movement(id); ok {
		return false
	}
	if _, ok := c.store.Attack(id); ok {
		return false
	}
	return true
}

// Move starts walking id toward target along the path in its senses. The
// walk starts on this tick; the request to the simulation is sent after.
func (c *Controller) Move(id string, target types.Cell) error {
	e, ok := c.store.Entity(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}
	m, ok := c.store.Sprite(id)
	if !ok {
		return fmt.Errorf("%w: %s has no sprite", ErrUnknownEntity, id)
	}
	if !c.Ready(id) {
		return fmt.Errorf("%w: %s", ErrBusy, id)
	}
	if target == e.Position {
		return fmt.Errorf("%w: %s is already at %v", ErrNoPath, id, target)
	}
	steps, ok := e.Senses.PathTo(target)
	if !ok || len(steps) == 0 {
		return fmt.Errorf("%w: %s to %v", ErrNoPath, id, target)
	}

	path := make([]types.Cell, 0, len(steps)+1)
	path = append(path, e.Position)
	path = append(path, steps...)

	m.VisualPosition = store.VecOf(e.Position)
	m.IsPositionSynced = false
	m.MovementState = store.MovementMoving
	m.CurrentDirection = types.DirectionBetween(path[0], path[1], m.CurrentDirection)
	gen := m.SetAnimation(constants.AnimationWalk)

	anim := &store.MovementAnimation{
		EntityID:            id,
		Path:                path,
		StartTime:           c.now(),
		Speed:               c.speed,
		TargetPosition:      target,
		ServerApprovalState: store.ApprovalPending,
		PathSenses:          map[string]types.Senses{},
		StartSenses:         e.Senses.Copy(),
	}
	c.store.SetMovement(anim)
	c.store.Notify(store.TopicSprites)

	c.logger.Debug("Moving entity %s from %v to %v (%d steps)", id, e.Position, target, len(steps))
	c.publish(events.TopicMovementStarted, anim, gen, events.StatusPlaying, events.MovementPayload{
		From:      path[0],
		To:        target,
		Direction: m.CurrentDirection,
		Steps:     len(path) - 1,
	})
	c.publish(events.TopicAnimationStarted, anim, gen, events.StatusPlaying, events.SpritePayload{
		Animation: constants.AnimationWalk,
		Direction: m.CurrentDirection,
	})

	var resp *types.MoveResponse
	c.runner.Run(func(ctx context.Context) error {
		var err error
		resp, err = c.mover.MoveEntity(ctx, id, target)
		return err
	}, func(err error) {
		c.onResponse(anim, resp, err)
	})
	return nil
}

// Update advances every movement by dt seconds.
func (c *Controller) Update(dt float64) {
	touched := false
	for _, id := range c.store.MovementIDs() {
		anim, ok := c.store.Movement(id)
		if !ok || anim.Finished {
			continue
		}
		m, ok := c.store.Sprite(id)
		if !ok {
			c.store.ClearMovement(id)
			continue
		}
		c.advance(anim, m, dt)
		touched = true
	}
	if touched {
		c.store.Notify(store.TopicSprites)
	}
}

func (c *Controller) advance(anim *store.MovementAnimation, m *store.SpriteMapping, dt float64) {
	last := len(anim.Path) - 1
	// remaining is measured in segments
	remaining := anim.Speed * dt
	for remaining > 0 && anim.CurrentPathIndex < last {
		cur := store.VecOf(anim.Path[anim.CurrentPathIndex])
		next := anim.Path[anim.CurrentPathIndex+1]
		target := store.VecOf(next)
		left := 1 - anim.SegmentProgress
		if left > remaining {
			anim.SegmentProgress += remaining
			m.VisualPosition = cur.Lerp(target, anim.SegmentProgress)
			break
		}

		// close enough: snap to the waypoint and carry the leftover
		m.VisualPosition = target
		remaining -= left
		anim.SegmentProgress = 0
		anim.CurrentPathIndex++
		c.publish(events.TopicMovementSegmentCompleted, anim, m.Generation, events.StatusPlaying, events.MovementPayload{
			From:      anim.Path[anim.CurrentPathIndex-1],
			To:        next,
			Direction: m.CurrentDirection,
			Step:      anim.CurrentPathIndex,
			Steps:     last,
		})

		if anim.CurrentPathIndex < last {
			dir := types.DirectionBetween(next, anim.Path[anim.CurrentPathIndex+1], m.CurrentDirection)
			if dir != m.CurrentDirection {
				m.CurrentDirection = dir
				c.publish(events.TopicMovementDirectionChanged, anim, m.Generation, events.StatusPlaying, events.MovementPayload{
					From:      next,
					To:        anim.Path[anim.CurrentPathIndex+1],
					Direction: dir,
					Step:      anim.CurrentPathIndex,
					Steps:     last,
				})
			}
		}
	}

	if anim.CurrentPathIndex >= last {
		c.finishVisual(anim, m)
	}
}

func (c *Controller) finishVisual(anim *store.MovementAnimation, m *store.SpriteMapping) {
	anim.Finished = true
	switch anim.ServerApprovalState {
	case store.ApprovalApproved:
		c.complete(anim, events.StatusCompleted)
	case store.ApprovalRejected:
		c.complete(anim, events.StatusRejected)
	default:
		// walked the whole path before the simulation answered
		m.MovementState = store.MovementResyncing
		gen := m.SetAnimation(m.IdleAnimation)
		c.publish(events.TopicAnimationOrphaned, anim, gen, events.StatusOrphan, nil)
	}
}

// complete returns the entity to idle at its authoritative position.
func (c *Controller) complete(anim *store.MovementAnimation, status events.Status) {
	id := anim.EntityID
	c.store.ClearMovement(id)
	m, ok := c.store.Sprite(id)
	if !ok {
		return
	}
	if e, ok := c.store.Entity(id); ok {
		m.VisualPosition = store.VecOf(e.Position)
	}
	m.IsPositionSynced = true
	m.MovementState = store.MovementIdle
	gen := m.Generation
	if m.CurrentAnimation != m.IdleAnimation {
		gen = m.SetAnimation(m.IdleAnimation)
	}
	c.store.Notify(store.TopicSprites)

	payload := events.MovementPayload{
		From:      anim.Path[0],
		To:        m.VisualPosition.Cell(),
		Direction: m.CurrentDirection,
		Step:      anim.CurrentPathIndex,
		Steps:     len(anim.Path) - 1,
	}
	if status == events.StatusRejected {
		c.logger.Info("Rolled back entity %s to %v", id, payload.To)
	}
	c.publish(events.TopicMovementCompleted, anim, gen, status, payload)
	c.publish(events.TopicAnimationCompleted, anim, gen, status, nil)
}

func (c *Controller) onResponse(anim *store.MovementAnimation, resp *types.MoveResponse, err error) {
	current, ok := c.store.Movement(anim.EntityID)
	if !ok || current != anim {
		c.logger.Debug("Ignoring stale move response for %s", anim.EntityID)
		return
	}

	if err != nil {
		c.logger.Warn("Move of %s rejected: %v", anim.EntityID, err)
		anim.ServerApprovalState = store.ApprovalRejected
		c.publish(events.TopicAnimationRejected, anim, c.generation(anim.EntityID), events.StatusRejected, nil)
		if anim.Finished {
			c.complete(anim, events.StatusRejected)
		}
		return
	}

	anim.ServerApprovalState = store.ApprovalApproved
	if resp != nil {
		for k, s := range resp.PathSenses {
			anim.PathSenses[k] = s
		}
		if resp.Entity.UUID == anim.EntityID {
			c.store.ReplaceEntityAt(resp.Entity, c.now())
		}
	}
	c.publish(events.TopicAnimationAdopted, anim, c.generation(anim.EntityID), events.StatusAdopted, nil)
	if anim.Finished {
		c.complete(anim, events.StatusCompleted)
	}
}

func (c *Controller) generation(id string) uint64 {
	if m, ok := c.store.Sprite(id); ok {
		return m.Generation
	}
	return 0
}

func (c *Controller) publish(topic events.Topic, anim *store.MovementAnimation, gen uint64, status events.Status, payload interface{}) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.Event{
		Topic:      topic,
		EntityID:   anim.EntityID,
		Kind:       events.KindMovement,
		Status:     status,
		Progress:   progress(anim),
		Generation: gen,
		StartedAt:  anim.StartTime,
		Payload:    payload,
	})
}

func progress(anim *store.MovementAnimation) float64 {
	steps := len(anim.Path) - 1
	if steps <= 0 {
		return 1
	}
	return float64(anim.CurrentPathIndex) / float64(steps)
}
