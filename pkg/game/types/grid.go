package types

// Tile is one cell of terrain.
type Tile struct {
	Position Cell   `json:"position"`
	Walkable bool   `json:"walkable"`
	Visible  bool   `json:"visible"`
	Sprite   string `json:"sprite,omitempty"`
}

// Grid is the terrain of the battle map, indexed by "x,y".
type Grid struct {
	Width  int              `json:"width"`
	Height int              `json:"height"`
	Tiles  map[string]*Tile `json:"tiles"`
}

// NewGrid creates an empty grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Tiles:  make(map[string]*Tile),
	}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Tile returns the tile at c, if any.
func (g *Grid) Tile(c Cell) (*Tile, bool) {
	t, ok := g.Tiles[c.Key()]
	return t, ok
}

// SetTile stores t at its own position.
func (g *Grid) SetTile(t *Tile) {
	if g.Tiles == nil {
		g.Tiles = make(map[string]*Tile)
	}
	g.Tiles[t.Position.Key()] = t
}

// RemoveTile deletes the tile at c.
func (g *Grid) RemoveTile(c Cell) {
	delete(g.Tiles, c.Key())
}

// Walkable reports whether a tile exists at c and can be walked on.
func (g *Grid) Walkable(c Cell) bool {
	t, ok := g.Tile(c)
	return ok && t.Walkable
}

// Copy returns a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	out := NewGrid(g.Width, g.Height)
	for k, t := range g.Tiles {
		tile := *t
		out.Tiles[k] = &tile
	}
	return out
}
