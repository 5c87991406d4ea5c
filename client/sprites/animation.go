package sprites

import (
	"math"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/hajimehoshi/ebiten/v2"
)

// Animation plays a sequence of frames over a fixed duration.
type Animation struct {
	// frames may be empty while textures are loading; timing still advances.
	frames []*ebiten.Image
	// loop restarts the animation when it reaches the end.
	loop bool
	// duration is the length of one pass in seconds.
	duration float64
	// frameCount is the number of frames used for timing.
	frameCount int

	elapsed     float64
	frameIndex  int
	finished    bool
	impactFired bool
}

type NewAnimationOptions struct {
	Frames   []*ebiten.Image
	Loop     bool
	Duration float64
	// FrameCount overrides len(Frames) for timing when frames are not loaded yet.
	FrameCount int
	// StartFrame starts playback at the given frame.
	StartFrame int
}

func NewAnimation(opts NewAnimationOptions) *Animation {
	duration := opts.Duration
	if duration <= 0 {
		duration = constants.DefaultAnimationDuration
	}
	count := len(opts.Frames)
	if count == 0 {
		count = opts.FrameCount
	}
	if count <= 0 {
		count = 1
	}
	a := &Animation{
		frames:     opts.Frames,
		loop:       opts.Loop,
		duration:   duration,
		frameCount: count,
	}
	if opts.StartFrame > 0 {
		start := opts.StartFrame % count
		a.elapsed = float64(start) * a.frameDuration()
		a.frameIndex = start
		if !a.loop && a.Progress() >= constants.ImpactProgress {
			a.impactFired = true
		}
	}
	return a
}

func (a *Animation) frameDuration() float64 {
	return a.duration / float64(a.frameCount)
}

// Update advances playback by dt seconds. impact is true on the single
// update where a non-looping animation crosses the impact point; completed
// is true on the single update where it reaches its end.
func (a *Animation) Update(dt float64) (impact, completed bool) {
	if a.finished {
		return false, false
	}
	a.elapsed += dt

	if a.loop {
		a.elapsed = math.Mod(a.elapsed, a.duration)
		a.frameIndex = int(a.elapsed/a.frameDuration()) % a.frameCount
		return false, false
	}

	if !a.impactFired && a.Progress() >= constants.ImpactProgress {
		a.impactFired = true
		impact = true
	}
	if a.elapsed >= a.duration {
		a.elapsed = a.duration
		a.frameIndex = a.frameCount - 1
		a.finished = true
		return impact, true
	}
	a.frameIndex = int(a.elapsed / a.frameDuration())
	if a.frameIndex >= a.frameCount {
		a.frameIndex = a.frameCount - 1
	}
	return impact, false
}

// Resume continues prev's pass on a after a direction change: playback
// position, impact and completion carry over so neither fires twice.
func (a *Animation) Resume(prev *Animation) {
	if prev == nil || a.loop != prev.loop {
		return
	}
	a.elapsed = prev.Progress() * a.duration
	a.frameIndex = prev.frameIndex
	if a.frameIndex >= a.frameCount {
		a.frameIndex = a.frameCount - 1
	}
	a.finished = prev.finished
	a.impactFired = prev.impactFired
}

func (a *Animation) Reset() {
	a.elapsed = 0
	a.frameIndex = 0
	a.finished = false
	a.impactFired = false
}

// SetFrames swaps in loaded frames without interrupting playback.
func (a *Animation) SetFrames(frames []*ebiten.Image) {
	a.frames = frames
	if len(frames) > 0 && len(frames) != a.frameCount {
		progress := a.elapsed / a.duration
		a.frameCount = len(frames)
		a.frameIndex = int(progress * float64(a.frameCount))
		if a.frameIndex >= a.frameCount {
			a.frameIndex = a.frameCount - 1
		}
	}
}

// SetDuration changes the pass length, keeping the normalized progress.
func (a *Animation) SetDuration(duration float64) {
	if duration <= 0 || duration == a.duration {
		return
	}
	progress := a.elapsed / a.duration
	a.duration = duration
	a.elapsed = progress * duration
}

// Progress returns the normalized position in the current pass.
func (a *Animation) Progress() float64 {
	p := a.elapsed / a.duration
	if p > 1 {
		return 1
	}
	return p
}

func (a *Animation) CurrentImage() *ebiten.Image {
	if a.frameIndex < len(a.frames) {
		return a.frames[a.frameIndex]
	}
	return nil
}

func (a *Animation) FrameIndex() int {
	return a.frameIndex
}

func (a *Animation) FrameCount() int {
	return a.frameCount
}

func (a *Animation) Loop() bool {
	return a.loop
}

func (a *Animation) Finished() bool {
	return a.finished
}

func (a *Animation) Duration() float64 {
	return a.duration
}

// Loops reports whether the named animation should loop. Idle and
// locomotion loop; combat reactions play once.
func Loops(animation string) bool {
	switch animation {
	case constants.AnimationAttack, constants.AnimationDamage, constants.AnimationDeath:
		return false
	default:
		return true
	}
}
