package render

import (
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/client/visibility"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
)

// FogSource returns the latest visibility result. A nil result means no fog.
type FogSource func() *visibility.Result

func tileState(fog FogSource, c types.Cell) visibility.TileState {
	if fog == nil {
		return visibility.TileVisible
	}
	r := fog()
	if r == nil {
		return visibility.TileVisible
	}
	return r.Tile(c)
}

// viewKey identifies everything a cached terrain batch depends on.
type viewKey struct {
	grid    *types.Grid
	tiles   int
	fog     uint64
	zoom    float64
	offsetX float64
	offsetY float64
	width   int
	height  int
}

// Terrain fills every known tile with its walkability colour. Tiles that
// have been seen but are not currently visible are dimmed; unseen tiles are
// left to the background.
type Terrain struct {
	store     *store.Store
	transform *iso.Transform
	fog       FogSource

	batch Batch
	last  viewKey
	built bool
}

type NewTerrainOptions struct {
	Store     *store.Store
	Transform *iso.Transform
	Fog       FogSource
}

func NewTerrain(opts NewTerrainOptions) *Terrain {
	return &Terrain{
		store:     opts.Store,
		transform: opts.Transform,
		fog:       opts.Fog,
	}
}

func (t *Terrain) Init(s *scene.Scene) error {
	s.Track(t.store.Subscribe(store.TopicGrid, s.Invalidate))
	s.OnRender(func() {
		w, h := s.Size()
		t.Rebuild(w, h)
	})
	s.AddDrawer(scene.LayerTerrain, scene.DrawerFunc(t.batch.Draw))
	return nil
}

func (t *Terrain) Destroy() error {
	t.batch.Reset()
	t.built = false
	return nil
}

// Rebuild regenerates the tile batch if the grid, fog or camera changed.
// It reports whether any work was done.
func (t *Terrain) Rebuild(width, height int) bool {
	key := t.key(width, height)
	if t.built && key == t.last {
		return false
	}
	t.last = key
	t.built = true

	t.batch.Reset()
	g := t.store.Grid()
	if g == nil {
		return true
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := types.Cell{X: x, Y: y}
			tile, ok := g.Tile(c)
			if !ok {
				continue
			}
			alpha := float32(1)
			switch tileState(t.fog, c) {
			case visibility.TileHidden:
				continue
			case visibility.TileDimmed:
				alpha = constants.DimmedTileAlpha
			}
			clr := ColorBlocked
			if tile.Walkable {
				clr = ColorWalkable
			}
			t.batch.AddDiamond(t.transform.DiamondCorners(c, 0), clr, alpha)
		}
	}
	return true
}

func (t *Terrain) key(width, height int) viewKey {
	k := viewKey{width: width, height: height}
	if g := t.store.Grid(); g != nil {
		k.grid = g
		k.tiles = len(g.Tiles)
	}
	if t.fog != nil {
		if r := t.fog(); r != nil {
			k.fog = r.Hash
		}
	}
	k.zoom = t.transform.Zoom()
	k.offsetX, k.offsetY = t.transform.Offset()
	return k
}

// Tiles returns the number of diamonds in the current batch.
func (t *Terrain) Tiles() int {
	return t.batch.Len()
}

// GridLines strokes the outline of every drawn tile.
type GridLines struct {
	store     *store.Store
	transform *iso.Transform
	fog       FogSource

	segments []Segment
}

func NewGridLines(s *store.Store, transform *iso.Transform, fog FogSource) *GridLines {
	return &GridLines{store: s, transform: transform, fog: fog}
}

func (l *GridLines) Init(s *scene.Scene) error {
	s.OnRender(l.Rebuild)
	s.AddDrawer(scene.LayerGridLines, scene.DrawerFunc(l.Draw))
	return nil
}

func (l *GridLines) Destroy() error {
	l.segments = nil
	return nil
}

func (l *GridLines) Rebuild() {
	l.segments = l.segments[:0]
	g := l.store.Grid()
	if g == nil {
		return
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := types.Cell{X: x, Y: y}
			if _, ok := g.Tile(c); !ok {
				continue
			}
			if tileState(l.fog, c) == visibility.TileHidden {
				continue
			}
			l.segments = append(l.segments, diamondOutline(l.transform.DiamondCorners(c, 0.5))...)
		}
	}
}

func (l *GridLines) Segments() []Segment {
	return l.segments
}

func (l *GridLines) Draw(screen *ebiten.Image) {
	strokeSegments(screen, l.segments, 1, ColorGridLine)
}
