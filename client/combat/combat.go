// Package combat plays attacks optimistically and reconciles them with the
// simulation's verdict.
package combat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
)

const DefaultChainTimeout = constants.AttackChainTimeout

var (
	ErrUnknownEntity = errors.New("unknown entity")
	ErrNoTarget      = errors.New("no valid target")
	ErrBusy          = errors.New("attacker is busy")
	ErrOutOfRange    = errors.New("target out of range")
)

// Attacker resolves attacks on the simulation.
type Attacker interface {
	ExecuteAttack(ctx context.Context, attackerID, targetID string) (*types.AttackResponse, error)
}

// Runner runs blocking work off the render loop and calls done on it.
type Runner interface {
	Run(fn func(ctx context.Context) error, done func(err error))
}

// Mover is the movement controller used to close distance before a strike.
type Mover interface {
	Ready(id string) bool
	Move(id string, target types.Cell) error
}

// ZOrder raises the attacker above its neighbours during the strike.
type ZOrder interface {
	Elevate(id string)
	Clear(id string)
}

// Refresher requests fresh entity summaries after an adopted attack.
type Refresher interface {
	Refresh()
}

// chain is an attack waiting for its approach move to finish.
type chain struct {
	attackerID  string
	targetID    string
	destination types.Cell
	deadline    time.Time
}

// Controller runs attack animations.
type Controller struct {
	store     *store.Store
	bus       *events.Bus
	attacker  Attacker
	runner    Runner
	mover     Mover
	zorder    ZOrder
	refresher Refresher
	timeout   time.Duration
	now       func() time.Time
	logger    *log.Logger

	chains       map[string]*chain
	subscription *events.Subscription
}

type NewControllerOptions struct {
	Store     *store.Store
	Bus       *events.Bus
	Attacker  Attacker
	Runner    Runner
	Mover     Mover
	ZOrder    ZOrder
	Refresher Refresher
	// ChainTimeout bounds a move-then-attack. Defaults to DefaultChainTimeout.
	ChainTimeout time.Duration
	Now          func() time.Time
	Logger       *log.Logger
}

func NewController(opts NewControllerOptions) *Controller {
	timeout := opts.ChainTimeout
	if timeout <= 0 {
		timeout = DefaultChainTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	c := &Controller{
		store:     opts.Store,
		bus:       opts.Bus,
		attacker:  opts.Attacker,
		runner:    opts.Runner,
		mover:     opts.Mover,
		zorder:    opts.ZOrder,
		refresher: opts.Refresher,
		timeout:   timeout,
		now:       now,
		logger:    logger.With("component", "combat"),
		chains:    make(map[string]*chain),
	}
	c.subscription = c.bus.Subscribe(events.TopicAnimationCompleted, c.onAnimationCompleted)
	return c
}

// Close detaches the controller from the event bus.
func (c *Controller) Close() {
	c.subscription.Cancel()
}

// Subscription returns the bus subscription so a scene can track it.
func (c *Controller) Subscription() *events.Subscription {
	return c.subscription
}

// Pending reports whether an approach move is in progress for attackerID.
func (c *Controller) Pending(attackerID string) bool {
	_, ok := c.chains[attackerID]
	return ok
}

// ExecuteAttack strikes the target if it is adjacent, or walks next to it
// first and strikes once the walk has finished.
func (c *Controller) ExecuteAttack(attackerID, targetID string) error {
	attacker, target, err := c.validate(attackerID, targetID)
	if err != nil {
		return err
	}
	if attacker.Position.Adjacent(target.Position) {
		return c.strike(attacker, target)
	}

	dest, ok := c.approach(attacker, target)
	if !ok {
		return fmt.Errorf("%w: %s cannot reach %s", ErrOutOfRange, attackerID, targetID)
	}
	if err := c.mover.Move(attackerID, dest); err != nil {
		return fmt.Errorf("failed to move %s into range: %w", attackerID, err)
	}
	ch := &chain{
		attackerID:  attackerID,
		targetID:    targetID,
		destination: dest,
		deadline:    c.now().Add(c.timeout),
	}
	c.chains[attackerID] = ch
	c.logger.Debug("Moving %s to %v to attack %s", attackerID, dest, targetID)
	c.publishChain(events.TopicAnimationQueued, ch, events.StatusPending)
	return nil
}

func (c *Controller) validate(attackerID, targetID string) (*types.EntitySummary, *types.EntitySummary, error) {
	attacker, ok := c.store.Entity(attackerID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownEntity, attackerID)
	}
	if _, ok := c.store.Sprite(attackerID); !ok {
		return nil, nil, fmt.Errorf("%w: %s has no sprite", ErrUnknownEntity, attackerID)
	}
	target, ok := c.store.Entity(targetID)
	if !ok || targetID == attackerID || target.IsDead() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoTarget, targetID)
	}
	if c.Pending(attackerID) || !c.mover.Ready(attackerID) {
		return nil, nil, fmt.Errorf("%w: %s", ErrBusy, attackerID)
	}
	return attacker, target, nil
}

// approach picks the adjacent cell of the target with the shortest known
// path, skipping occupied and unwalkable cells.
func (c *Controller) approach(attacker, target *types.EntitySummary) (types.Cell, bool) {
	grid := c.store.Grid()
	best := types.NoCell
	bestLen := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			cell := target.Position.Add(dx, dy)
			if grid != nil && (!grid.InBounds(cell) || !grid.Walkable(cell)) {
				continue
			}
			if other, ok := c.store.EntityAt(cell); ok && other.UUID != attacker.UUID {
				continue
			}
			path, ok := attacker.Senses.PathTo(cell)
			if !ok {
				continue
			}
			if best == types.NoCell || len(path) < bestLen || (len(path) == bestLen && cell.Key() < best.Key()) {
				best = cell
				bestLen = len(path)
			}
		}
	}
	return best, best != types.NoCell
}

func (c *Controller) strike(attacker, target *types.EntitySummary) error {
	m, ok := c.store.Sprite(attacker.UUID)
	if !ok {
		return fmt.Errorf("%w: %s has no sprite", ErrUnknownEntity, attacker.UUID)
	}

	m.CurrentDirection = types.DirectionBetween(attacker.Position, target.Position, m.CurrentDirection)
	c.zorder.Elevate(attacker.UUID)
	gen := m.SetAnimation(constants.AnimationAttack)

	anim := &store.AttackAnimation{
		AttackerID: attacker.UUID,
		TargetID:   target.UUID,
		Status:     store.AttackOptimistic,
		Generation: gen,
		StartTime:  c.now(),
	}
	c.store.SetAttack(anim)
	c.store.Notify(store.TopicSprites)

	c.logger.Debug("Entity %s attacks %s", attacker.UUID, target.UUID)
	c.publish(events.TopicAttackStarted, anim, events.StatusPlaying)
	c.bus.Publish(events.Event{
		Topic:      events.TopicAnimationStarted,
		EntityID:   attacker.UUID,
		Kind:       events.KindAttack,
		Status:     events.StatusPlaying,
		Generation: gen,
		StartedAt:  anim.StartTime,
		Payload:    events.SpritePayload{Animation: constants.AnimationAttack, Direction: m.CurrentDirection},
	})

	var resp *types.AttackResponse
	attackerID, targetID := attacker.UUID, target.UUID
	c.runner.Run(func(ctx context.Context) error {
		var err error
		resp, err = c.attacker.ExecuteAttack(ctx, attackerID, targetID)
		return err
	}, func(err error) {
		c.onResult(anim, resp, err)
	})
	return nil
}

// Update resumes or abandons chained attacks.
func (c *Controller) Update() {
	if len(c.chains) == 0 {
		return
	}
	ids := make([]string, 0, len(c.chains))
	for id := range c.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := c.now()
	for _, id := range ids {
		ch := c.chains[id]
		if now.After(ch.deadline) {
			delete(c.chains, id)
			c.logger.Warn("Abandoning attack of %s on %s after %s", ch.attackerID, ch.targetID, c.timeout)
			c.publishChain(events.TopicAnimationCancelled, ch, events.StatusCancelled)
			continue
		}
		if !c.mover.Ready(id) {
			continue
		}
		delete(c.chains, id)

		attacker, target, err := c.validate(ch.attackerID, ch.targetID)
		if err != nil {
			c.logger.Info("Dropping chained attack of %s: %v", ch.attackerID, err)
			c.publishChain(events.TopicAnimationCancelled, ch, events.StatusCancelled)
			continue
		}
		if !attacker.Position.Adjacent(target.Position) {
			c.logger.Info("Dropping chained attack of %s: %s is out of reach", ch.attackerID, ch.targetID)
			c.publishChain(events.TopicAnimationCancelled, ch, events.StatusCancelled)
			continue
		}
		if err := c.strike(attacker, target); err != nil {
			c.logger.Warn("Failed to strike after move: %v", err)
		}
	}
}

func (c *Controller) onResult(anim *store.AttackAnimation, resp *types.AttackResponse, err error) {
	current, ok := c.store.Attack(anim.AttackerID)
	if !ok || current != anim {
		c.logger.Debug("Ignoring stale attack result for %s", anim.AttackerID)
		return
	}

	if err != nil {
		c.logger.Warn("Attack by %s rejected: %v", anim.AttackerID, err)
		anim.Status = store.AttackRejected
		c.publish(events.TopicAnimationRejected, anim, events.StatusRejected)
		c.restore(anim)
		c.store.ClearAttack(anim.AttackerID)
		// the strike is cut short, so no completion will follow from the sprite
		c.publish(events.TopicAnimationCancelled, anim, events.StatusCancelled)
		c.publish(events.TopicAttackCompleted, anim, events.StatusRejected)
		return
	}

	anim.Status = store.AttackAdopted
	anim.Result = resp
	c.publish(events.TopicAnimationAdopted, anim, events.StatusAdopted)
	if c.refresher != nil {
		c.refresher.Refresh()
	}
	if anim.Finished {
		c.store.ClearAttack(anim.AttackerID)
	}
}

func (c *Controller) onAnimationCompleted(ev events.Event) {
	if ev.Kind != events.KindAttack {
		return
	}
	anim, ok := c.store.Attack(ev.EntityID)
	if !ok || anim.Finished {
		return
	}
	if ev.Generation != anim.Generation {
		c.logger.Debug("Ignoring stale attack completion for %s (gen %d, want %d)", ev.EntityID, ev.Generation, anim.Generation)
		return
	}

	anim.Finished = true
	c.restore(anim)
	if anim.Status != store.AttackOptimistic {
		c.store.ClearAttack(anim.AttackerID)
	}
	c.publish(events.TopicAttackCompleted, anim, events.StatusCompleted)
}

// restore returns the attacker to idle unless a newer animation replaced
// the strike, and drops the z-order elevation.
func (c *Controller) restore(anim *store.AttackAnimation) {
	c.zorder.Clear(anim.AttackerID)
	m, ok := c.store.Sprite(anim.AttackerID)
	if !ok {
		return
	}
	if m.Generation == anim.Generation {
		m.SetAnimation(m.IdleAnimation)
		c.store.Notify(store.TopicSprites)
	}
}

func (c *Controller) publish(topic events.Topic, anim *store.AttackAnimation, status events.Status) {
	payload := events.AttackPayload{
		AttackerID: anim.AttackerID,
		TargetID:   anim.TargetID,
	}
	if anim.Result != nil {
		payload.Resolved = true
		payload.Hit = anim.Result.Hit
		payload.Damage = anim.Result.Damage
		payload.Critical = anim.Result.Critical
	}
	c.bus.Publish(events.Event{
		Topic:      topic,
		EntityID:   anim.AttackerID,
		Kind:       events.KindAttack,
		Status:     status,
		Generation: anim.Generation,
		StartedAt:  anim.StartTime,
		Payload:    payload,
	})
}

// publishChain announces a strike waiting on its approach move. It has no
// animation yet, so the event carries no generation.
func (c *Controller) publishChain(topic events.Topic, ch *chain, status events.Status) {
	c.bus.Publish(events.Event{
		Topic:    topic,
		EntityID: ch.attackerID,
		Kind:     events.KindAttack,
		Status:   status,
		Payload: events.AttackPayload{
			AttackerID: ch.attackerID,
			TargetID:   ch.targetID,
		},
	})
}
