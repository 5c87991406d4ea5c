// Package input polls the pointer and keyboard and turns them into camera
// changes and entity commands.
package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// IsPositiveJustPressed returns a boolean value indicating whether the generic positive input is just pressed.
// This is used to handle both mouse and touch inputs.
func IsPositiveJustPressed() bool {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	return len(touchIDs) > 0
}

// IsNegativeJustPressed returns a boolean value indicating whether the generic negative input is just pressed.
func IsNegativeJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

// IsPanPressed reports whether a camera drag button is held.
func IsPanPressed() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
}

func IsRightPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD)
}

func IsLeftPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA)
}

func IsUpPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW)
}

func IsDownPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS)
}

func IsCycleObserverJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyTab)
}

func IsCopyJustPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) && inpututil.IsKeyJustPressed(ebiten.KeyC)
}

// State is the input observed during one tick.
type State struct {
	CursorX float64
	CursorY float64
	// Clicked is set on the tick the primary button went down.
	Clicked bool
	// Pan is set while a drag button is held.
	Pan bool
	// KeyPanX and KeyPanY are the arrow key directions, each -1, 0 or 1.
	KeyPanX float64
	KeyPanY float64
	Wheel   float64
	// CycleObserver is set when the observer should advance to the next entity.
	CycleObserver bool
	// ClearObserver is set when fog should be lifted.
	ClearObserver bool
	// CopyCell is set when the hovered cell key should go to the clipboard.
	CopyCell bool
}

// Poll reads the current ebiten input state.
func Poll() State {
	x, y := ebiten.CursorPosition()
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y = ebiten.TouchPosition(ids[0])
	}
	_, wheel := ebiten.Wheel()

	s := State{
		CursorX:       float64(x),
		CursorY:       float64(y),
		Clicked:       IsPositiveJustPressed(),
		Pan:           IsPanPressed(),
		Wheel:         wheel,
		CycleObserver: IsCycleObserverJustPressed(),
		ClearObserver: IsNegativeJustPressed(),
		CopyCell:      IsCopyJustPressed(),
	}
	if IsRightPressed() {
		s.KeyPanX--
	}
	if IsLeftPressed() {
		s.KeyPanX++
	}
	if IsDownPressed() {
		s.KeyPanY--
	}
	if IsUpPressed() {
		s.KeyPanY++
	}
	return s
}

// zoomFactor converts wheel ticks into a multiplicative zoom step.
func zoomFactor(wheel float64) float64 {
	return math.Pow(1.1, wheel)
}
