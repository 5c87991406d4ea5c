package scene

import "github.com/hajimehoshi/ebiten/v2"

// Layer is a fixed draw slot. Layers are drawn in declaration order.
type Layer int

const (
	LayerTerrain Layer = iota
	LayerGridLines
	LayerEffectsBehind
	LayerEntities
	LayerEffectsFront
	LayerInteraction

	layerCount
)

func (l Layer) String() string {
	switch l {
	case LayerTerrain:
		return "terrain"
	case LayerGridLines:
		return "grid-lines"
	case LayerEffectsBehind:
		return "effects-behind"
	case LayerEntities:
		return "entities"
	case LayerEffectsFront:
		return "effects-front"
	case LayerInteraction:
		return "interaction"
	default:
		return "unknown"
	}
}

// Layers returns every layer in draw order.
func Layers() []Layer {
	out := make([]Layer, 0, layerCount)
	for l := LayerTerrain; l < layerCount; l++ {
		out = append(out, l)
	}
	return out
}

// Drawer draws onto the screen every frame.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// DrawerFunc adapts a function to a Drawer.
type DrawerFunc func(screen *ebiten.Image)

func (f DrawerFunc) Draw(screen *ebiten.Image) {
	f(screen)
}
