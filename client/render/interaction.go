package render

import (
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/hajimehoshi/ebiten/v2"
)

// Interaction outlines the hovered cell and the observer's cell.
type Interaction struct {
	store     *store.Store
	transform *iso.Transform

	hover    []Segment
	observer []Segment
}

func NewInteraction(s *store.Store, transform *iso.Transform) *Interaction {
	return &Interaction{store: s, transform: transform}
}

func (i *Interaction) Init(s *scene.Scene) error {
	s.Track(i.store.Subscribe(store.TopicView, s.Invalidate))
	s.Track(i.store.Subscribe(store.TopicObserver, s.Invalidate))
	s.OnRender(i.Rebuild)
	s.AddDrawer(scene.LayerInteraction, scene.DrawerFunc(i.Draw))
	return nil
}

func (i *Interaction) Destroy() error {
	i.hover = nil
	i.observer = nil
	return nil
}

// Rebuild recomputes the outlines. Hover is not shown while panning.
func (i *Interaction) Rebuild() {
	i.hover = nil
	i.observer = nil

	view := i.store.View()
	if view.HasHover && !view.Panning {
		i.hover = diamondOutline(i.transform.DiamondCorners(view.HoveredCell, 1))
	}
	if id := i.store.Observer(); id != "" {
		if m, ok := i.store.Sprite(id); ok {
			i.observer = diamondOutline(i.transform.DiamondCorners(m.VisualPosition.Cell(), 3))
		}
	}
}

// Hovering reports whether a hover outline is drawn.
func (i *Interaction) Hovering() bool {
	return len(i.hover) > 0
}

func (i *Interaction) Draw(screen *ebiten.Image) {
	strokeSegments(screen, i.observer, 1.5, ColorObserver)
	strokeSegments(screen, i.hover, 2, ColorHover)
}
