// Package iso converts between grid cells, isometric projection space and
// screen pixels.
package iso

import (
	"math"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// Point is a continuous 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Hit is the result of a screen-space hit test.
type Hit struct {
	Cell     types.Cell
	InBounds bool
}

// Transform maps grid cells to screen pixels for a grid of fixed size shown
// in a viewport with a reserved side panel, a zoom factor and a pan offset.
type Transform struct {
	tileWidth  float64
	tileHeight float64
	gridWidth  int
	gridHeight int

	viewportWidth  float64
	viewportHeight float64
	sidePanelWidth float64

	zoom    float64
	offsetX float64
	offsetY float64

	// centerX and centerY place the grid's bounding box in the middle of
	// the usable viewport. Recomputed on any viewport, grid or zoom change.
	centerX float64
	centerY float64
}

type NewTransformOptions struct {
	// TileWidth is the diamond width at zoom 1.
	TileWidth float64
	// TileHeight is the diamond height at zoom 1.
	TileHeight float64
	// GridWidth is the number of grid columns.
	GridWidth int
	// GridHeight is the number of grid rows.
	GridHeight int
	// ViewportWidth is the screen width in pixels.
	ViewportWidth float64
	// ViewportHeight is the screen height in pixels.
	ViewportHeight float64
	// SidePanelWidth is the screen width reserved on the right.
	SidePanelWidth float64
	// Zoom is the tile scale factor.
	Zoom float64
}

func NewTransform(opts NewTransformOptions) *Transform {
	if opts.TileWidth <= 0 {
		opts.TileWidth = constants.TileWidth
	}
	if opts.TileHeight <= 0 {
		opts.TileHeight = constants.TileHeight
	}
	if opts.Zoom <= 0 {
		opts.Zoom = 1
	}
	t := &Transform{
		tileWidth:      opts.TileWidth,
		tileHeight:     opts.TileHeight,
		gridWidth:      opts.GridWidth,
		gridHeight:     opts.GridHeight,
		viewportWidth:  opts.ViewportWidth,
		viewportHeight: opts.ViewportHeight,
		sidePanelWidth: opts.SidePanelWidth,
		zoom:           opts.Zoom,
	}
	t.recenter()
	return t
}

func (t *Transform) halfWidth() float64 {
	return t.tileWidth / 2
}

func (t *Transform) halfHeight() float64 {
	return t.tileHeight / 2
}

// GridToIso projects a continuous grid coordinate to the centre of its
// diamond in isometric space.
func (t *Transform) GridToIso(gx, gy float64) Point {
	return Point{
		X: (gx - gy) * t.halfWidth(),
		Y: (gx + gy) * t.halfHeight(),
	}
}

// IsoToGrid is the exact inverse of GridToIso.
func (t *Transform) IsoToGrid(p Point) (gx, gy float64) {
	a := p.X / t.halfWidth()  // gx - gy
	b := p.Y / t.halfHeight() // gx + gy
	return (a + b) / 2, (b - a) / 2
}

// GridToScreen returns the screen position of the centre of a continuous
// grid coordinate.
func (t *Transform) GridToScreen(gx, gy float64) Point {
	p := t.GridToIso(gx, gy)
	return Point{
		X: p.X*t.zoom + t.centerX + t.offsetX,
		Y: p.Y*t.zoom + t.centerY + t.offsetY,
	}
}

// CellToScreen returns the screen centre of a cell.
func (t *Transform) CellToScreen(c types.Cell) Point {
	return t.GridToScreen(float64(c.X), float64(c.Y))
}

// ScreenToGridF returns the continuous grid coordinate under a screen point.
func (t *Transform) ScreenToGridF(sx, sy float64) (gx, gy float64) {
	p := Point{
		X: (sx - t.centerX - t.offsetX) / t.zoom,
		Y: (sy - t.centerY - t.offsetY) / t.zoom,
	}
	return t.IsoToGrid(p)
}

// ScreenToGrid hit-tests a screen point. Points outside the grid yield the
// sentinel cell (-1,-1) with InBounds false.
func (t *Transform) ScreenToGrid(sx, sy float64) Hit {
	gx, gy := t.ScreenToGridF(sx, sy)
	c := types.Cell{X: int(math.Round(gx)), Y: int(math.Round(gy))}
	if c.X < 0 || c.Y < 0 || c.X >= t.gridWidth || c.Y >= t.gridHeight {
		return Hit{Cell: types.NoCell, InBounds: false}
	}
	return Hit{Cell: c, InBounds: true}
}

// DiamondCorners returns the top, right, bottom and left screen vertices of
// a cell. A positive inset pulls each vertex toward the centre by that many
// pixels so adjacent strokes do not overlap.
func (t *Transform) DiamondCorners(c types.Cell, inset float64) [4]Point {
	center := t.CellToScreen(c)
	hw := t.halfWidth()*t.zoom - inset
	hh := t.halfHeight()*t.zoom - inset*t.tileHeight/t.tileWidth
	if hw < 0 {
		hw = 0
	}
	if hh < 0 {
		hh = 0
	}
	return [4]Point{
		{X: center.X, Y: center.Y - hh},
		{X: center.X + hw, Y: center.Y},
		{X: center.X, Y: center.Y + hh},
		{X: center.X - hw, Y: center.Y},
	}
}

// GridBounds returns the isometric-space bounding box of the whole grid.
func (t *Transform) GridBounds() (min, max Point) {
	if t.gridWidth <= 0 || t.gridHeight <= 0 {
		return Point{}, Point{}
	}
	w := float64(t.gridWidth - 1)
	h := float64(t.gridHeight - 1)
	hw := t.halfWidth()
	hh := t.halfHeight()
	min = Point{X: -h*hw - hw, Y: -hh}
	max = Point{X: w*hw + hw, Y: (w+h)*hh + hh}
	return min, max
}

func (t *Transform) recenter() {
	min, max := t.GridBounds()
	usable := t.viewportWidth - t.sidePanelWidth
	t.centerX = usable/2 - (min.X+max.X)/2*t.zoom
	t.centerY = t.viewportHeight/2 - (min.Y+max.Y)/2*t.zoom
}

// SetViewport updates the screen size and reserved side panel width.
func (t *Transform) SetViewport(width, height, sidePanel float64) {
	t.viewportWidth = width
	t.viewportHeight = height
	t.sidePanelWidth = sidePanel
	t.recenter()
}

// SetGridSize updates the grid dimensions.
func (t *Transform) SetGridSize(width, height int) {
	t.gridWidth = width
	t.gridHeight = height
	t.recenter()
}

// SetZoom sets the tile scale factor, clamped to the allowed range.
func (t *Transform) SetZoom(zoom float64) {
	t.zoom = math.Max(constants.MinZoom, math.Min(constants.MaxZoom, zoom))
	t.recenter()
}

// SetOffset sets the pan offset in pixels.
func (t *Transform) SetOffset(x, y float64) {
	t.offsetX = x
	t.offsetY = y
}

// Pan moves the pan offset by (dx, dy) pixels.
func (t *Transform) Pan(dx, dy float64) {
	t.offsetX += dx
	t.offsetY += dy
}

func (t *Transform) Zoom() float64 {
	return t.zoom
}

func (t *Transform) Offset() (x, y float64) {
	return t.offsetX, t.offsetY
}

// TileSize returns the on-screen diamond size at the current zoom.
func (t *Transform) TileSize() (w, h float64) {
	return t.tileWidth * t.zoom, t.tileHeight * t.zoom
}

func (t *Transform) GridSize() (w, h int) {
	return t.gridWidth, t.gridHeight
}
