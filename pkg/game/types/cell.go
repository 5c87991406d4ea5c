package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoCell is the sentinel returned for coordinates outside the grid.
var NoCell = Cell{X: -1, Y: -1}

// Key returns the "x,y" form used to index tiles, senses and paths.
func (c Cell) Key() string {
	return strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y)
}

func (c Cell) String() string {
	return "(" + c.Key() + ")"
}

// Add returns c offset by (dx, dy).
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Chebyshev returns the king-move distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	dx := abs(c.X - o.X)
	dy := abs(c.Y - o.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether o is one of the eight neighbours of c.
func (c Cell) Adjacent(o Cell) bool {
	return c != o && c.Chebyshev(o) <= 1
}

// ParseCellKey parses an "x,y" key.
func ParseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return NoCell, fmt.Errorf("invalid cell key %q", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return NoCell, fmt.Errorf("invalid cell key %q: %v", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return NoCell, fmt.Errorf("invalid cell key %q: %v", key, err)
	}
	return Cell{X: x, Y: y}, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// CellSet is a set of cells. It is encoded on the wire as an array of "x,y" keys.
type CellSet map[Cell]struct{}

// NewCellSet builds a set from the given cells.
func NewCellSet(cells ...Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s CellSet) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

func (s CellSet) Add(c Cell) {
	s[c] = struct{}{}
}

// Union returns a new set holding every cell of s and o.
func (s CellSet) Union(o CellSet) CellSet {
	out := make(CellSet, len(s)+len(o))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range o {
		out[c] = struct{}{}
	}
	return out
}

// Contains reports whether every cell of o is in s.
func (s CellSet) Contains(o CellSet) bool {
	for c := range o {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Clone returns a copy of s.
func (s CellSet) Clone() CellSet {
	out := make(CellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the cells ordered by row then column.
func (s CellSet) Sorted() []Cell {
	cells := make([]Cell, 0, len(s))
	for c := range s {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
	return cells
}

func (s CellSet) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		keys = append(keys, c.Key())
	}
	return json.Marshal(keys)
}

func (s *CellSet) UnmarshalJSON(b []byte) error {
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		return fmt.Errorf("failed to unmarshal cell set: %v", err)
	}
	out := make(CellSet, len(keys))
	for _, k := range keys {
		c, err := ParseCellKey(k)
		if err != nil {
			return err
		}
		out[c] = struct{}{}
	}
	*s = out
	return nil
}
