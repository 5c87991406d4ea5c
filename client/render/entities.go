package render

import (
	"image/color"
	"math"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/picking"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/client/sprites"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/client/zorder"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	hpBarWidth  = 32
	hpBarHeight = 4
	labelGap    = 4
)

// node is the container child for one entity. Its depth follows the
// visual position so moving sprites are re-sorted as they walk.
type node struct {
	id    string
	store *store.Store
}

func (n *node) ID() string {
	return n.id
}

func (n *node) Depth() float64 {
	m, ok := n.store.Sprite(n.id)
	if !ok {
		return 0
	}
	return m.VisualPosition.X + m.VisualPosition.Y
}

// Box is the screen rectangle of a drawn sprite.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// spriteBox anchors a sprite's feet at the centre of its diamond.
func spriteBox(anchor iso.Point, frameWidth, frameHeight int, scale float64) Box {
	w := float64(frameWidth) * scale
	h := float64(frameHeight) * scale
	return Box{X: anchor.X - w/2, Y: anchor.Y - h, Width: w, Height: h}
}

// hpFraction returns the filled share of the hit point bar.
func hpFraction(hp, maxHP int) float64 {
	if maxHP <= 0 {
		return 1
	}
	return math.Max(0, math.Min(1, float64(hp)/float64(maxHP)))
}

// Entities draws every renderable entity in z-order and keeps the picker
// in sync with what is on screen.
type Entities struct {
	store     *store.Store
	transform *iso.Transform
	sprites   *sprites.Manager
	container *zorder.SortedContainer
	picker    *picking.Picker
	fog       FogSource
	logger    *log.Logger

	entries []picking.Entry
}

type NewEntitiesOptions struct {
	Store     *store.Store
	Transform *iso.Transform
	Sprites   *sprites.Manager
	Container *zorder.SortedContainer
	Picker    *picking.Picker
	Fog       FogSource
	Logger    *log.Logger
}

func NewEntities(opts NewEntitiesOptions) *Entities {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Entities{
		store:     opts.Store,
		transform: opts.Transform,
		sprites:   opts.Sprites,
		container: opts.Container,
		picker:    opts.Picker,
		fog:       opts.Fog,
		logger:    logger.With("component", "render"),
	}
}

func (e *Entities) Init(s *scene.Scene) error {
	s.Track(e.store.Subscribe(store.TopicEntities, s.Invalidate))
	s.Track(e.store.Subscribe(store.TopicSprites, s.Invalidate))
	s.OnRender(e.SyncChildren)
	s.OnResize(func(width, height int) {
		if e.picker != nil {
			e.picker.Resize(width, height)
		}
	})
	s.AddDrawer(scene.LayerEntities, scene.DrawerFunc(e.Draw))
	return nil
}

func (e *Entities) Destroy() error {
	for _, c := range append([]zorder.Child(nil), e.container.GetChildren()...) {
		if err := e.container.RemoveChild(c.ID()); err != nil {
			return err
		}
	}
	e.entries = nil
	return nil
}

// SyncChildren adds a container child for every mapping and removes
// children whose mapping is gone.
func (e *Entities) SyncChildren() {
	live := make(map[string]bool)
	for _, id := range e.store.SpriteIDs() {
		live[id] = true
		if e.container.GetChild(id) != nil {
			continue
		}
		if err := e.container.AddChild(&node{id: id, store: e.store}); err != nil {
			e.logger.Warn("Failed to add entity %s to the draw list: %v", id, err)
		}
	}
	for _, c := range append([]zorder.Child(nil), e.container.GetChildren()...) {
		if live[c.ID()] {
			continue
		}
		if err := e.container.RemoveChild(c.ID()); err != nil {
			e.logger.Warn("Failed to remove entity %s from the draw list: %v", c.ID(), err)
		}
	}
}

func (e *Entities) renderable(id string) bool {
	if e.fog == nil {
		return true
	}
	r := e.fog()
	return r == nil || r.Renderable(id)
}

// layout computes the screen box of one entity. It reports false when the
// entity has no frame to draw.
func (e *Entities) layout(id string) (Box, *ebiten.Image, bool) {
	m, ok := e.store.Sprite(id)
	if !ok {
		return Box{}, nil, false
	}
	s, ok := e.sprites.Sprite(id)
	if !ok {
		return Box{}, nil, false
	}
	img := s.Image()
	if img == nil {
		return Box{}, nil, false
	}
	anchor := e.transform.GridToScreen(m.VisualPosition.X, m.VisualPosition.Y)
	b := img.Bounds()
	scale := s.Scale() * e.transform.Zoom()
	return spriteBox(anchor, b.Dx(), b.Dy(), scale), img, true
}

// Draw sorts the draw list, draws each visible entity with its label and
// hit point bar, and rebuilds the picker from the drawn boxes.
func (e *Entities) Draw(screen *ebiten.Image) {
	e.container.SortIfNeeded()
	e.entries = e.entries[:0]
	for order, child := range e.container.GetChildren() {
		id := child.ID()
		if !e.renderable(id) {
			continue
		}
		box, img, ok := e.layout(id)
		if !ok {
			continue
		}

		op := &ebiten.DrawImageOptions{}
		scale := box.Width / float64(img.Bounds().Dx())
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(box.X, box.Y)
		screen.DrawImage(img, op)

		e.drawOverlay(screen, id, box)
		e.entries = append(e.entries, picking.Entry{
			ID:     id,
			X:      box.X,
			Y:      box.Y,
			Width:  box.Width,
			Height: box.Height,
			Order:  order,
		})
	}
	if e.picker != nil {
		e.picker.Rebuild(e.entries)
	}
}

func (e *Entities) drawOverlay(screen *ebiten.Image, id string, box Box) {
	entity, ok := e.store.Entity(id)
	if !ok {
		return
	}
	cx := box.X + box.Width/2

	barX := float32(cx - hpBarWidth/2)
	barY := float32(box.Y - labelGap - hpBarHeight)
	vector.DrawFilledRect(screen, barX, barY, hpBarWidth, hpBarHeight, ColorHPBack, false)
	fill := float32(hpFraction(entity.HP, entity.MaxHP)) * hpBarWidth
	if fill > 0 {
		vector.DrawFilledRect(screen, barX, barY, fill, hpBarHeight, ColorHPFill, false)
	}

	if entity.Name == "" {
		return
	}
	drawCenteredText(screen, fonts.LabelFont, entity.Name, cx, float64(barY)-labelGap, ColorLabel)
}

func drawCenteredText(screen *ebiten.Image, face font.Face, s string, cx, baseline float64, clr color.Color) {
	bounds, _ := font.BoundString(face, s)
	width := (bounds.Max.X - bounds.Min.X).Ceil()
	text.Draw(screen, s, face, int(cx)-width/2, int(baseline), clr)
}

// Entries returns the picking boxes from the last draw.
func (e *Entities) Entries() []picking.Entry {
	return e.entries
}
