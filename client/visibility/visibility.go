// Package visibility decides what the selected observer can see.
package visibility

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// MotionSource reports in-flight movement.
type MotionSource interface {
	IsAnimating(id string) bool
	AnyAnimating() bool
	AnticipatedSenses(id string) (types.Senses, bool)
	VisualCell(id string) (types.Cell, bool)
}

// TileState is how a tile is drawn under fog of war.
type TileState uint8

const (
	// TileHidden tiles were never seen and are drawn black.
	TileHidden TileState = iota
	// TileDimmed tiles were seen before but are not visible now.
	TileDimmed
	TileVisible
)

func (s TileState) String() string {
	switch s {
	case TileHidden:
		return "hidden"
	case TileDimmed:
		return "dimmed"
	case TileVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// Source names the rule that produced a result's senses.
type Source uint8

const (
	SourceNone Source = iota
	SourceAnticipated
	SourceCached
	SourceSteady
)

// Result is the outcome of one visibility pass.
type Result struct {
	Observer string
	// Fog is false when no observer is selected; everything is visible.
	Fog      bool
	Source   Source
	Senses   types.Senses
	Tiles    map[types.Cell]TileState
	Entities map[string]bool
	Hash     uint64
}

// Tile returns the state of the tile at c.
func (r *Result) Tile(c types.Cell) TileState {
	if !r.Fog {
		return TileVisible
	}
	if s, ok := r.Tiles[c]; ok {
		return s
	}
	return TileHidden
}

// Renderable reports whether the entity should be drawn at all.
func (r *Result) Renderable(id string) bool {
	if !r.Fog {
		return true
	}
	return r.Entities[id]
}

// Calculator recomputes visibility from the store and in-flight movement.
type Calculator struct {
	store  *store.Store
	motion MotionSource

	cache        *types.Senses
	last         *Result
	subscription *events.Subscription
}

type NewCalculatorOptions struct {
	Store  *store.Store
	Motion MotionSource
	// Bus, when set, is used to snapshot the observer's senses as soon as
	// another entity starts moving.
	Bus *events.Bus
}

func NewCalculator(opts NewCalculatorOptions) *Calculator {
	c := &Calculator{
		store:  opts.Store,
		motion: opts.Motion,
	}
	if opts.Bus != nil {
		c.subscription = opts.Bus.Subscribe(events.TopicMovementStarted, c.onMovementStarted)
	}
	return c
}

// Close detaches the calculator from the bus.
func (c *Calculator) Close() {
	c.subscription.Cancel()
}

func (c *Calculator) onMovementStarted(ev events.Event) {
	if ev.EntityID != c.store.Observer() {
		c.snapshot()
	}
}

func (c *Calculator) snapshot() {
	if c.cache != nil {
		return
	}
	e, ok := c.store.Entity(c.store.Observer())
	if !ok {
		return
	}
	s := e.Senses.Copy()
	c.cache = &s
}

// Cached reports whether a senses snapshot is held.
func (c *Calculator) Cached() bool {
	return c.cache != nil
}

// Last returns the previous result, if any.
func (c *Calculator) Last() *Result {
	return c.last
}

// Recompute evaluates visibility. When the result hash matches the previous
// pass the previous result is returned and changed is false.
func (c *Calculator) Recompute() (*Result, bool) {
	if !c.motion.AnyAnimating() {
		c.cache = nil
	}
	r := c.compute()
	if c.last != nil && c.last.Hash == r.Hash {
		return c.last, false
	}
	c.last = r
	return r, true
}

func (c *Calculator) compute() *Result {
	observerID := c.store.Observer()
	observer, ok := c.store.Entity(observerID)
	if !ok {
		r := &Result{Source: SourceNone}
		r.Hash = hashResult(r)
		return r
	}

	r := &Result{
		Observer: observerID,
		Fog:      true,
		Tiles:    make(map[types.Cell]TileState),
		Entities: make(map[string]bool),
	}
	r.Senses, r.Source = c.resolve(observer)

	if grid := c.store.Grid(); grid != nil {
		for _, t := range grid.Tiles {
			p := t.Position
			switch {
			case r.Senses.CanSee(p):
				r.Tiles[p] = TileVisible
			case r.Senses.HasSeen(p):
				r.Tiles[p] = TileDimmed
			default:
				r.Tiles[p] = TileHidden
			}
		}
	}

	for _, id := range c.store.EntityIDs() {
		if id == observerID {
			r.Entities[id] = true
			continue
		}
		cell, ok := c.motion.VisualCell(id)
		if !ok {
			continue
		}
		r.Entities[id] = r.Senses.CanSee(cell)
	}

	r.Hash = hashResult(r)
	return r
}

// resolve picks the observer's senses: its own anticipated senses while it
// moves, a snapshot while only others move, its current senses otherwise.
func (c *Calculator) resolve(observer *types.EntitySummary) (types.Senses, Source) {
	if c.motion.IsAnimating(observer.UUID) {
		if s, ok := c.motion.AnticipatedSenses(observer.UUID); ok {
			return s.MergeSeen(observer.Senses), SourceAnticipated
		}
	}
	if c.motion.AnyAnimating() {
		c.snapshot()
		if c.cache != nil {
			return c.cache.MergeSeen(observer.Senses), SourceCached
		}
	}
	return observer.Senses, SourceSteady
}

func hashResult(r *Result) uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.Observer))
	if r.Fog {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	cells := make([]types.Cell, 0, len(r.Tiles))
	for c := range r.Tiles {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	var buf [8]byte
	for _, c := range cells {
		binary.LittleEndian.PutUint32(buf[:4], uint32(int32(c.X)))
		binary.LittleEndian.PutUint32(buf[4:], uint32(int32(c.Y)))
		h.Write(buf[:])
		h.Write([]byte{byte(r.Tiles[c])})
	}

	ids := make([]string, 0, len(r.Entities))
	for id := range r.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h.Write([]byte(id))
		if r.Entities[id] {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
