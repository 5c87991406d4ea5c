// Package scene composes drawing components into ordered layers and drives
// their per-frame updates.
package scene

import (
	"fmt"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Component is a unit registered with a scene. Init is called once when the
// component is added; it registers the component's drawers, clock
// callbacks and subscriptions with the scene. Destroy releases drawing
// resources during teardown.
type Component interface {
	Init(s *Scene) error
	Destroy() error
}

// Canceller is anything that can be detached, such as a store or event
// bus subscription.
type Canceller interface {
	Cancel()
}

// Surface is the host drawing target.
type Surface interface {
	Detach()
}

// Scene owns the layers, the clock and the registered components.
type Scene struct {
	clock      *Clock
	layers     [layerCount][]Drawer
	components []Component
	renders    []func()
	resizes    []func(width, height int)
	subs       []Canceller
	surface    Surface
	logger     *log.Logger

	width       int
	height      int
	dirty       bool
	renderCount int
	tornDown    bool
}

type NewSceneOptions struct {
	Surface Surface
	Width   int
	Height  int
	Logger  *log.Logger
}

func New(opts NewSceneOptions) *Scene {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Scene{
		clock:   NewClock(),
		surface: opts.Surface,
		width:   opts.Width,
		height:  opts.Height,
		logger:  logger.With("component", "scene"),
		dirty:   true,
	}
}

func (s *Scene) Clock() *Clock {
	return s.clock
}

func (s *Scene) Size() (int, int) {
	return s.width, s.height
}

// AddComponent initializes c and keeps it for teardown.
func (s *Scene) AddComponent(c Component) error {
	if s.tornDown {
		return fmt.Errorf("scene has been torn down")
	}
	if err := c.Init(s); err != nil {
		return fmt.Errorf("failed to init component: %v", err)
	}
	s.components = append(s.components, c)
	s.Invalidate()
	return nil
}

// AddDrawer appends d to the layer. Drawers within a layer are drawn in
// the order they were added.
func (s *Scene) AddDrawer(layer Layer, d Drawer) {
	if layer < 0 || layer >= layerCount {
		s.logger.Warn("Ignoring drawer for unknown layer %d", layer)
		return
	}
	s.layers[layer] = append(s.layers[layer], d)
}

// OnUpdate registers fn with the shared clock.
func (s *Scene) OnUpdate(fn func(dt float64)) *Token {
	return s.clock.Register(fn)
}

// OnRender registers fn to run on the next frame after the scene has been
// invalidated.
func (s *Scene) OnRender(fn func()) {
	s.renders = append(s.renders, fn)
}

// OnResize registers fn to recompute viewport dependent state.
func (s *Scene) OnResize(fn func(width, height int)) {
	s.resizes = append(s.resizes, fn)
}

// Track keeps c to be cancelled on teardown.
func (s *Scene) Track(c Canceller) {
	s.subs = append(s.subs, c)
}

// Invalidate schedules a render pass.
func (s *Scene) Invalidate() {
	s.dirty = true
}

func (s *Scene) Dirty() bool {
	return s.dirty
}

// RenderCount returns the number of render passes run so far.
func (s *Scene) RenderCount() int {
	return s.renderCount
}

// Update advances the clock.
func (s *Scene) Update(dt float64) {
	if s.tornDown {
		return
	}
	s.clock.Tick(dt)
}

// Flush runs the render callbacks if the scene is dirty.
func (s *Scene) Flush() bool {
	if s.tornDown || !s.dirty {
		return false
	}
	s.dirty = false
	s.renderCount++
	for _, fn := range s.renders {
		fn()
	}
	return true
}

// Draw flushes pending render work and draws every layer in order.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.tornDown {
		return
	}
	s.Flush()
	for _, drawers := range s.layers {
		for _, d := range drawers {
			d.Draw(screen)
		}
	}
}

// Resize updates the viewport and forces one extra render pass.
func (s *Scene) Resize(width, height int) {
	if s.tornDown {
		return
	}
	s.width, s.height = width, height
	for _, fn := range s.resizes {
		fn(width, height)
	}
	s.Invalidate()
}

// Teardown stops the clock, detaches subscriptions, destroys components in
// reverse order and finally detaches the surface. It is safe to call more
// than once.
func (s *Scene) Teardown() {
	if s.tornDown {
		return
	}
	s.tornDown = true
	s.clock.Stop()
	for _, c := range s.subs {
		c.Cancel()
	}
	s.subs = nil
	for i := len(s.components) - 1; i >= 0; i-- {
		if err := s.components[i].Destroy(); err != nil {
			s.logger.Error("Failed to destroy component: %v", err)
		}
	}
	s.components = nil
	s.renders = nil
	s.resizes = nil
	for i := range s.layers {
		s.layers[i] = nil
	}
	if s.surface != nil {
		s.surface.Detach()
	}
}

func (s *Scene) TornDown() bool {
	return s.tornDown
}
