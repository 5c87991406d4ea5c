package simstub

import (
	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// neighbours are the king-move offsets in a fixed order so paths are
// deterministic.
var neighbours = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

// updateSenses recomputes every entity's senses. Callers hold w.mu.
func (w *World) updateSenses() {
	for _, e := range w.entities {
		e.summary.Senses = w.sensesFor(e).MergeSeen(e.summary.Senses)
	}
}

// sensesFor computes what e sees and where it can walk from its current
// position. Seen is set to the visible cells; callers merge history.
func (w *World) sensesFor(e *entity) types.Senses {
	visible := types.NewCellSet()
	pos := e.summary.Position
	r := w.sightRadius
	for y := pos.Y - r; y <= pos.Y+r; y++ {
		for x := pos.X - r; x <= pos.X+r; x++ {
			c := types.Cell{X: x, Y: y}
			if _, ok := w.grid.Tile(c); ok {
				visible.Add(c)
			}
		}
	}
	s := types.Senses{
		Visible: visible,
		Seen:    visible.Clone(),
	}
	if !e.summary.IsDead() {
		s.Paths = w.paths(e, e.economy.Movement)
	}
	return s
}

// paths runs a breadth-first search over walkable unoccupied cells and
// returns the steps to every cell reachable within budget.
func (w *World) paths(e *entity, budget int) map[string][]types.Cell {
	out := make(map[string][]types.Cell)
	start := e.summary.Position
	prev := map[types.Cell]types.Cell{start: start}
	dist := map[types.Cell]int{start: 0}
	frontier := []types.Cell{start}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if dist[cur] >= budget {
			continue
		}
		for _, n := range neighbours {
			next := cur.Add(n[0], n[1])
			if _, seen := dist[next]; seen {
				continue
			}
			if !w.grid.Walkable(next) || w.occupied(next, e.summary.UUID) {
				continue
			}
			dist[next] = dist[cur] + 1
			prev[next] = cur
			frontier = append(frontier, next)
		}
	}
	for c := range dist {
		if c == start {
			continue
		}
		steps := make([]types.Cell, dist[c])
		for i, at := len(steps)-1, c; i >= 0; i-- {
			steps[i] = at
			at = prev[at]
		}
		out[c.Key()] = steps
	}
	return out
}
