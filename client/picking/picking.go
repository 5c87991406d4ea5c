// Package picking finds the entity under the pointer.
package picking

import (
	"math"

	"github.com/solarlune/resolv"
)

const (
	tagEntity = "entity"
	tagProbe  = "probe"

	cellSize = 32
	// margin lets sprites hanging off the top left of the screen be indexed.
	margin = 256
)

// Entry is the on-screen bounding box of one drawn sprite. Order is the
// draw order; higher values are drawn later.
type Entry struct {
	ID     string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Order  int
}

func (e Entry) contains(x, y float64) bool {
	return x >= e.X && x < e.X+e.Width && y >= e.Y && y < e.Y+e.Height
}

// Picker indexes sprite boxes in a resolv space.
type Picker struct {
	space   *resolv.Space
	probe   *resolv.Object
	entries map[*resolv.Object]Entry
	width   int
	height  int
}

func NewPicker(width, height int) *Picker {
	p := &Picker{entries: make(map[*resolv.Object]Entry)}
	p.Resize(width, height)
	return p
}

// Resize rebuilds the space for a new viewport. Indexed entries are dropped.
func (p *Picker) Resize(width, height int) {
	p.width, p.height = width, height
	p.space = resolv.NewSpace(width+2*margin, height+2*margin, cellSize, cellSize)
	p.probe = resolv.NewObject(0, 0, 1, 1, tagProbe)
	p.space.Add(p.probe)
	p.entries = make(map[*resolv.Object]Entry)
}

// Rebuild replaces the indexed entries.
func (p *Picker) Rebuild(entries []Entry) {
	for obj := range p.entries {
		p.space.Remove(obj)
	}
	p.entries = make(map[*resolv.Object]Entry, len(entries))
	for _, e := range entries {
		if e.Width <= 0 || e.Height <= 0 {
			continue
		}
		obj := resolv.NewObject(e.X+margin, e.Y+margin, e.Width, e.Height, tagEntity)
		p.space.Add(obj)
		p.entries[obj] = e
	}
}

// Len returns the number of indexed entries.
func (p *Picker) Len() int {
	return len(p.entries)
}

// Pick returns the top-most entity whose box contains the point.
func (p *Picker) Pick(x, y float64) (string, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return "", false
	}
	p.probe.Position.X = x + margin
	p.probe.Position.Y = y + margin
	p.probe.Update()

	collision := p.probe.Check(0, 0, tagEntity)
	if collision == nil {
		return "", false
	}
	best := ""
	bestOrder := math.MinInt
	for _, obj := range collision.Objects {
		e, ok := p.entries[obj]
		if !ok || !e.contains(x, y) {
			continue
		}
		if e.Order > bestOrder || (e.Order == bestOrder && e.ID > best) {
			best = e.ID
			bestOrder = e.Order
		}
	}
	return best, best != ""
}
