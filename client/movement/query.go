package movement

import (
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// IsAnimating reports whether id has a movement in flight, including one
// waiting for the simulation after the walk finished.
func (c *Controller) IsAnimating(id string) bool {
	_, ok := c.store.Movement(id)
	return ok
}

// AnyAnimating reports whether any entity is moving.
func (c *Controller) AnyAnimating() bool {
	return len(c.store.MovementIDs()) > 0
}

// VisualCell returns the cell nearest to where id is drawn.
func (c *Controller) VisualCell(id string) (types.Cell, bool) {
	m, ok := c.store.Sprite(id)
	if !ok {
		if e, ok := c.store.Entity(id); ok {
			return e.Position, true
		}
		return types.NoCell, false
	}
	return m.VisualPosition.Cell(), true
}

// AnticipatedCell returns the cell whose senses apply to a moving entity.
// Past the halfway point of a segment the next waypoint is used.
func (c *Controller) AnticipatedCell(id string) (types.Cell, bool) {
	anim, ok := c.store.Movement(id)
	if !ok {
		return types.NoCell, false
	}
	if _, ok := c.store.Sprite(id); !ok {
		return types.NoCell, false
	}
	last := len(anim.Path) - 1
	if anim.CurrentPathIndex >= last {
		return anim.Path[last], true
	}
	cur := anim.Path[anim.CurrentPathIndex]
	next := anim.Path[anim.CurrentPathIndex+1]
	t := anim.SegmentProgress
	if t >= constants.AnticipationThreshold {
		return next, true
	}
	return cur, true
}

// AnticipatedSenses returns the senses a moving entity has at its
// anticipated cell. Cells without per-step senses fall back to the nearest
// earlier step, then to the senses it started with. Seen cells always
// include the starting seen set.
func (c *Controller) AnticipatedSenses(id string) (types.Senses, bool) {
	anim, ok := c.store.Movement(id)
	if !ok {
		return types.Senses{}, false
	}
	cell, ok := c.AnticipatedCell(id)
	if !ok {
		return types.Senses{}, false
	}

	index := anim.CurrentPathIndex
	if cell != anim.Path[index] {
		index++
	}
	for i := index; i > 0; i-- {
		if s, ok := anim.PathSenses[anim.Path[i].Key()]; ok {
			return s.MergeSeen(anim.StartSenses), true
		}
	}
	return anim.StartSenses, true
}
