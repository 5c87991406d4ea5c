package zorder

import (
	"fmt"
	"sort"
)

// Child is an entry of a SortedContainer.
type Child interface {
	ID() string
	// Depth is the default draw-order key. Children with a greater depth are
	// drawn later, i.e. on top.
	Depth() float64
}

// SortedContainer keeps its children ordered for drawing. The effective
// order is the z-index override when one exists, then depth, then id.
type SortedContainer struct {
	children map[string]Child
	sorted   []Child
	zindex   func(id string) (int, bool)
	resorts  int
}

func NewSortedContainer() *SortedContainer {
	return &SortedContainer{
		children: make(map[string]Child),
		sorted:   make([]Child, 0),
		zindex:   func(string) (int, bool) { return 0, false },
	}
}

// setZIndexSource wires the override lookup used when sorting.
func (c *SortedContainer) setZIndexSource(fn func(id string) (int, bool)) {
	c.zindex = fn
}

func (c *SortedContainer) AddChild(child Child) error {
	if _, ok := c.children[child.ID()]; ok {
		return fmt.Errorf("child object with id %s already exists", child.ID())
	}
	c.children[child.ID()] = child
	for i, obj := range c.sorted {
		if c.less(child, obj) {
			c.sorted = append(c.sorted[:i], append([]Child{child}, c.sorted[i:]...)...)
			return nil
		}
	}
	c.sorted = append(c.sorted, child)
	return nil
}

func (c *SortedContainer) RemoveChild(id string) error {
	if _, ok := c.children[id]; !ok {
		return fmt.Errorf("child object with id %s does not exist", id)
	}
	delete(c.children, id)
	for i, obj := range c.sorted {
		if obj.ID() == id {
			c.sorted = append(c.sorted[:i], c.sorted[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("child %s not found in sorted list", id)
}

func (c *SortedContainer) GetChild(id string) Child {
	return c.children[id]
}

// GetChildren returns the children in draw order.
func (c *SortedContainer) GetChildren() []Child {
	return c.sorted
}

func (c *SortedContainer) Len() int {
	return len(c.sorted)
}

// Sort re-sorts the children. Call it when depths or overrides changed.
func (c *SortedContainer) Sort() {
	sort.SliceStable(c.sorted, func(i, j int) bool {
		return c.less(c.sorted[i], c.sorted[j])
	})
	c.resorts++
}

// SortIfNeeded sorts only when the current order is stale.
func (c *SortedContainer) SortIfNeeded() bool {
	if sort.SliceIsSorted(c.sorted, func(i, j int) bool {
		return c.less(c.sorted[i], c.sorted[j])
	}) {
		return false
	}
	c.Sort()
	return true
}

// Resorts returns how many times the container has been re-sorted.
func (c *SortedContainer) Resorts() int {
	return c.resorts
}

func (c *SortedContainer) less(a, b Child) bool {
	za, oka := c.zindex(a.ID())
	zb, okb := c.zindex(b.ID())
	if oka != okb {
		return okb
	}
	if oka && za != zb {
		return za < zb
	}
	da, db := a.Depth(), b.Depth()
	if da != db {
		return da < db
	}
	return a.ID() < b.ID()
}
