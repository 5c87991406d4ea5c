package input

import (
	"errors"

	"github.com/atotto/clipboard"
	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/cbodonnell/skirmish/client/movement"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/client/visibility"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
)

// DefaultKeyPanSpeed is the keyboard pan rate in pixels per tick.
const DefaultKeyPanSpeed = 8.0

// Picker finds the entity drawn under a screen point.
type Picker interface {
	Pick(x, y float64) (string, bool)
}

// Mover starts a move for an entity.
type Mover interface {
	Move(id string, target types.Cell) error
}

// Attacker starts an attack.
type Attacker interface {
	ExecuteAttack(attackerID, targetID string) error
}

// ignorable are controller rejections that simply mean the command does
// not apply right now.
var ignorable = []error{
	movement.ErrBusy,
	movement.ErrNoPath,
	movement.ErrUnknownEntity,
	combat.ErrBusy,
	combat.ErrNoTarget,
	combat.ErrOutOfRange,
	combat.ErrUnknownEntity,
}

func isIgnorable(err error) bool {
	for _, target := range ignorable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Handler applies input to the camera and issues commands on behalf of the
// observer entity.
type Handler struct {
	store     *store.Store
	transform *iso.Transform
	picker    Picker
	mover     Mover
	attacker  Attacker
	panSpeed  float64
	covered   func(x, y float64) bool
	fog       func() *visibility.Result
	copyText  func(text string) error
	logger    *log.Logger

	panning bool
	lastX   float64
	lastY   float64
}

type NewHandlerOptions struct {
	Store     *store.Store
	Transform *iso.Transform
	Picker    Picker
	Mover     Mover
	Attacker  Attacker
	// KeyPanSpeed defaults to DefaultKeyPanSpeed.
	KeyPanSpeed float64
	// Covered reports screen points hidden behind other UI, such as the
	// side panel. Covered points neither hover nor click the map.
	Covered func(x, y float64) bool
	// Fog, when set, hides entities the observer cannot see from the
	// cell fallback of a click.
	Fog func() *visibility.Result
	// Clipboard receives the hovered cell key on copy. Defaults to the
	// system clipboard.
	Clipboard func(text string) error
	Logger    *log.Logger
}

func NewHandler(opts NewHandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	copyText := opts.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	speed := opts.KeyPanSpeed
	if speed <= 0 {
		speed = DefaultKeyPanSpeed
	}
	return &Handler{
		store:     opts.Store,
		transform: opts.Transform,
		picker:    opts.Picker,
		mover:     opts.Mover,
		attacker:  opts.Attacker,
		panSpeed:  speed,
		covered:   opts.Covered,
		fog:       opts.Fog,
		copyText:  copyText,
		logger:    logger.With("component", "input"),
	}
}

// Handle processes one tick of input.
func (h *Handler) Handle(s State) {
	h.handleCamera(s)
	h.handleObserver(s)

	hit := h.transform.ScreenToGrid(s.CursorX, s.CursorY)
	covered := h.covered != nil && h.covered(s.CursorX, s.CursorY)
	if covered {
		hit.InBounds = false
	}
	offsetX, offsetY := h.transform.Offset()
	tileWidth, _ := h.transform.TileSize()
	h.store.UpdateView(func(v *store.ViewState) {
		v.TileSize = tileWidth
		v.OffsetX = offsetX
		v.OffsetY = offsetY
		v.HoveredCell = hit.Cell
		v.HasHover = hit.InBounds
		v.Panning = h.panning
	})

	if s.CopyCell && hit.InBounds {
		if err := h.copyText(hit.Cell.Key()); err != nil {
			h.logger.Warn("Failed to copy cell %s: %v", hit.Cell.Key(), err)
		}
	}

	if s.Clicked && !h.panning && !covered {
		h.click(s.CursorX, s.CursorY, hit)
	}
}

func (h *Handler) handleCamera(s State) {
	if s.Pan {
		if h.panning {
			h.transform.Pan(s.CursorX-h.lastX, s.CursorY-h.lastY)
		}
		h.panning = true
		h.lastX, h.lastY = s.CursorX, s.CursorY
	} else {
		h.panning = false
	}
	if s.KeyPanX != 0 || s.KeyPanY != 0 {
		h.transform.Pan(s.KeyPanX*h.panSpeed, s.KeyPanY*h.panSpeed)
	}
	if s.Wheel != 0 {
		h.transform.SetZoom(h.transform.Zoom() * zoomFactor(s.Wheel))
	}
}

func (h *Handler) handleObserver(s State) {
	if s.ClearObserver {
		h.ClearObserver()
		return
	}
	if s.CycleObserver {
		h.CycleObserver()
	}
}

// ClearObserver removes the observer, lifting the fog.
func (h *Handler) ClearObserver() {
	h.store.SetObserver("")
}

// CycleObserver moves the observer to the next entity in id order.
func (h *Handler) CycleObserver() {
	ids := h.store.EntityIDs()
	if len(ids) == 0 {
		return
	}
	current := h.store.Observer()
	next := ids[0]
	for i, id := range ids {
		if id == current {
			next = ids[(i+1)%len(ids)]
			break
		}
	}
	h.logger.Debug("Observing %s", next)
	h.store.SetObserver(next)
}

// click attacks an entity under the pointer or moves to the clicked cell.
// Commands are issued for the observer; without one a click does nothing.
func (h *Handler) click(x, y float64, hit iso.Hit) {
	actor := h.store.Observer()
	if actor == "" {
		return
	}

	target, ok := "", false
	if h.picker != nil {
		target, ok = h.picker.Pick(x, y)
	}
	if !ok && hit.InBounds {
		if e, found := h.store.EntityAt(hit.Cell); found && h.renderable(e.UUID) {
			target, ok = e.UUID, true
		}
	}
	if ok {
		if target == actor {
			return
		}
		h.report("attack", h.attacker.ExecuteAttack(actor, target))
		return
	}

	if !hit.InBounds {
		return
	}
	h.report("move", h.mover.Move(actor, hit.Cell))
}

func (h *Handler) renderable(id string) bool {
	if h.fog == nil {
		return true
	}
	r := h.fog()
	return r == nil || r.Renderable(id)
}

func (h *Handler) report(command string, err error) {
	if err == nil {
		return
	}
	if isIgnorable(err) {
		h.logger.Debug("Ignoring %s command: %v", command, err)
		return
	}
	h.logger.Warn("Failed to %s: %v", command, err)
}
