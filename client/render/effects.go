package render

import (
	"image/color"

	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// DefaultTextTTL is how long floating combat text stays on screen, in seconds.
	DefaultTextTTL = 1.2
	// DefaultTextRise is how far floating text drifts up per second, in pixels.
	DefaultTextRise = 24.0
)

// FloatingText is a transient label above a cell.
type FloatingText struct {
	ID    string
	Text  string
	Cell  types.Cell
	Color color.Color
	// Age is the time since the text appeared, in seconds.
	Age float64
	TTL float64
}

func effectColor(name string) color.Color {
	switch name {
	case combat.EffectCritical:
		return ColorCritical
	case combat.EffectMiss:
		return ColorMiss
	default:
		return ColorDamage
	}
}

// Effects shows floating combat text requested through the event bus.
type Effects struct {
	bus       *events.Bus
	transform *iso.Transform
	ttl       float64
	rise      float64

	texts []*FloatingText
}

type NewEffectsOptions struct {
	Bus       *events.Bus
	Transform *iso.Transform
	TTL       float64
	Rise      float64
}

func NewEffects(opts NewEffectsOptions) *Effects {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTextTTL
	}
	rise := opts.Rise
	if rise <= 0 {
		rise = DefaultTextRise
	}
	return &Effects{
		bus:       opts.Bus,
		transform: opts.Transform,
		ttl:       ttl,
		rise:      rise,
	}
}

func (e *Effects) Init(s *scene.Scene) error {
	s.Track(e.bus.Subscribe(events.TopicEffectTrigger, func(ev events.Event) {
		if e.Add(ev) {
			s.Invalidate()
		}
	}))
	s.OnUpdate(func(dt float64) {
		if e.Update(dt) {
			s.Invalidate()
		}
	})
	s.AddDrawer(scene.LayerEffectsFront, scene.DrawerFunc(e.Draw))
	return nil
}

func (e *Effects) Destroy() error {
	e.texts = nil
	return nil
}

// Add queues the floating text carried by an effect trigger.
func (e *Effects) Add(ev events.Event) bool {
	p, ok := ev.Payload.(events.EffectPayload)
	if !ok || p.Text == "" {
		return false
	}
	e.texts = append(e.texts, &FloatingText{
		ID:    uuid.NewString(),
		Text:  p.Text,
		Cell:  p.Cell,
		Color: effectColor(p.Name),
		TTL:   e.ttl,
	})
	return true
}

// Update ages every text and drops the expired ones. It reports whether
// anything is still on screen or was just removed.
func (e *Effects) Update(dt float64) bool {
	if len(e.texts) == 0 {
		return false
	}
	live := e.texts[:0]
	for _, t := range e.texts {
		t.Age += dt
		if t.Age < t.TTL {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(e.texts); i++ {
		e.texts[i] = nil
	}
	e.texts = live
	return true
}

// Texts returns the texts currently shown.
func (e *Effects) Texts() []*FloatingText {
	return e.texts
}

func (e *Effects) Draw(screen *ebiten.Image) {
	_, tileHeight := e.transform.TileSize()
	for _, t := range e.texts {
		p := e.transform.CellToScreen(t.Cell)
		y := p.Y - tileHeight*2 - t.Age*e.rise
		drawCenteredText(screen, fonts.EffectFont, t.Text, p.X, y, t.Color)
	}
}
