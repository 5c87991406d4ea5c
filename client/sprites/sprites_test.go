package sprites

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deferredRunner holds jobs until flush, the way the render loop drains
// completions once per tick.
type deferredRunner struct {
	jobs []func()
}

func (r *deferredRunner) Run(fn func(ctx context.Context) error, done func(err error)) {
	r.jobs = append(r.jobs, func() { done(fn(context.Background())) })
}

func (r *deferredRunner) flush() {
	jobs := r.jobs
	r.jobs = nil
	for _, j := range jobs {
		j()
	}
}

type staticSource struct {
	sets  map[Key]FrameSet
	loads int
}

func (s *staticSource) Load(ctx context.Context, key Key) (FrameSet, error) {
	s.loads++
	set, ok := s.sets[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return set, nil
}

func frameSet(n int, dirs ...types.Direction) FrameSet {
	set := FrameSet{}
	for _, d := range dirs {
		for i := 0; i < n; i++ {
			set[d] = append(set[d], image.NewRGBA(image.Rect(0, 0, 1, 1)))
		}
	}
	return set
}

// nil textures keep the tests off the GPU
func nilTexture(image.Image) *ebiten.Image { return nil }

func TestParseFrameName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantDir   types.Direction
		wantIndex int
	}{
		{name: "single letter", input: "knight_idle_S_3.png", wantOK: true, wantDir: types.DirectionS, wantIndex: 3},
		{name: "two letters", input: "knight_walk_NE_12.png", wantOK: true, wantDir: types.DirectionNE, wantIndex: 12},
		{name: "other extension", input: "x_W_0.webp", wantOK: true, wantDir: types.DirectionW, wantIndex: 0},
		{name: "unknown direction", input: "knight_Q_1.png", wantOK: false},
		{name: "no index", input: "knight_S.png", wantOK: false},
		{name: "lowercase direction", input: "knight_s_1.png", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFrameName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantDir, got.Direction)
				assert.Equal(t, tt.wantIndex, got.Index)
			}
		})
	}
}

func TestGroupFrames_OrdersNumerically(t *testing.T) {
	groups := GroupFrames([]string{
		"k_S_10.png",
		"k_S_2.png",
		"k_E_1.png",
		"k_S_1.png",
		"readme.txt",
	})
	assert.Equal(t, []string{"k_S_1.png", "k_S_2.png", "k_S_10.png"}, groups[types.DirectionS])
	assert.Equal(t, []string{"k_E_1.png"}, groups[types.DirectionE])
	assert.Len(t, groups, 2)
}

func encodePNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestFSSource_Load(t *testing.T) {
	data := encodePNG(t)
	fsys := fstest.MapFS{
		"knight/idle/knight_idle_S_1.png": {Data: data},
		"knight/idle/knight_idle_S_0.png": {Data: data},
		"knight/idle/knight_idle_N_0.png": {Data: data},
		"knight/idle/notes.md":            {Data: []byte("x")},
	}
	src := NewFSSource(fsys)

	set, err := src.Load(context.Background(), Key{Folder: "knight", Animation: "idle"})
	require.NoError(t, err)
	assert.Len(t, set[types.DirectionS], 2)
	assert.Len(t, set[types.DirectionN], 1)

	_, err = src.Load(context.Background(), Key{Folder: "knight", Animation: "attack"})
	assert.Error(t, err)
}

func TestPlaceholderSource_AllDirections(t *testing.T) {
	set, err := PlaceholderSource{}.Load(context.Background(), Key{Folder: "goblin", Animation: "idle"})
	require.NoError(t, err)
	for _, d := range types.AllDirections {
		assert.Len(t, set[d], placeholderFrames, d.String())
	}
}

func TestLoader_CachesPerKey(t *testing.T) {
	src := &staticSource{sets: map[Key]FrameSet{
		{Folder: "k", Animation: "idle"}: frameSet(2, types.DirectionS),
	}}
	runner := &deferredRunner{}
	loader := NewLoader(NewLoaderOptions{Source: src, Runner: runner, NewTexture: nilTexture})
	key := Key{Folder: "k", Animation: "idle"}

	calls := 0
	loader.Request(key, func(f Frames, err error) { calls++ })
	loader.Request(key, func(f Frames, err error) { calls++ })
	assert.True(t, loader.Pending(key))
	assert.Equal(t, 0, calls)

	runner.flush()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, src.loads)

	loader.Request(key, func(f Frames, err error) {
		calls++
		assert.Len(t, f[types.DirectionS], 2)
	})
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, src.loads)
}

func TestLoader_FailureNotRetried(t *testing.T) {
	src := &staticSource{sets: map[Key]FrameSet{}}
	runner := &deferredRunner{}
	loader := NewLoader(NewLoaderOptions{Source: src, Runner: runner, NewTexture: nilTexture})
	key := Key{Folder: "k", Animation: "idle"}

	var errs []error
	loader.Request(key, func(f Frames, err error) { errs = append(errs, err) })
	runner.flush()
	loader.Request(key, func(f Frames, err error) { errs = append(errs, err) })

	require.Len(t, errs, 2)
	assert.Error(t, errs[0])
	assert.Error(t, errs[1])
	assert.Equal(t, 1, src.loads)
}

func TestAnimation_LoopingNeverCompletes(t *testing.T) {
	a := NewAnimation(NewAnimationOptions{FrameCount: 4, Loop: true, Duration: 1})
	for i := 0; i < 600; i++ {
		impact, completed := a.Update(1.0 / 60)
		assert.False(t, impact)
		assert.False(t, completed)
	}
	assert.False(t, a.Finished())
	assert.Less(t, a.FrameIndex(), 4)
}

func TestAnimation_FrameTiming(t *testing.T) {
	a := NewAnimation(NewAnimationOptions{FrameCount: 4, Loop: true, Duration: 1})
	a.Update(0.3)
	assert.Equal(t, 1, a.FrameIndex())
	a.Update(0.3)
	assert.Equal(t, 2, a.FrameIndex())
	a.Update(0.5)
	assert.Equal(t, 0, a.FrameIndex())
}

func TestAnimation_ImpactFiresOnce(t *testing.T) {
	const dt = 1.0 / 60
	tests := []struct {
		name     string
		frames   int
		duration float64
	}{
		{name: "default", frames: 6, duration: constants.DefaultAnimationDuration},
		{name: "short", frames: 3, duration: 0.25},
		{name: "long", frames: 12, duration: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnimation(NewAnimationOptions{FrameCount: tt.frames, Duration: tt.duration})
			impacts := 0
			completions := 0
			impactProgress := 0.0
			for i := 0; i < 1000 && !a.Finished(); i++ {
				impact, completed := a.Update(dt)
				if impact {
					impacts++
					impactProgress = a.Progress()
				}
				if completed {
					completions++
				}
			}
			// updates after the end do nothing
			impact, completed := a.Update(dt)
			assert.False(t, impact)
			assert.False(t, completed)

			assert.Equal(t, 1, impacts)
			assert.Equal(t, 1, completions)
			assert.GreaterOrEqual(t, impactProgress, constants.ImpactProgress)
			assert.Less(t, impactProgress, constants.ImpactProgress+dt/tt.duration+1e-9)
		})
	}
}

func TestAnimation_ImpactWhenCompletingInOneStep(t *testing.T) {
	a := NewAnimation(NewAnimationOptions{FrameCount: 4, Duration: 0.1})
	impact, completed := a.Update(1)
	assert.True(t, impact)
	assert.True(t, completed)
	assert.Equal(t, 3, a.FrameIndex())
}

func TestAnimation_StartFrame(t *testing.T) {
	a := NewAnimation(NewAnimationOptions{FrameCount: 4, Loop: true, Duration: 1, StartFrame: 2})
	assert.Equal(t, 2, a.FrameIndex())
	a.Update(0.26)
	assert.Equal(t, 3, a.FrameIndex())
}

func TestLoops(t *testing.T) {
	assert.True(t, Loops(constants.AnimationIdle))
	assert.True(t, Loops(constants.AnimationWalk))
	assert.True(t, Loops("breathing"))
	assert.False(t, Loops(constants.AnimationAttack))
	assert.False(t, Loops(constants.AnimationDamage))
	assert.False(t, Loops(constants.AnimationDeath))
}

type managerFixture struct {
	store   *store.Store
	manager *Manager
	runner  *deferredRunner
	source  *staticSource
	events  []events.Event
}

func newManagerFixture(t *testing.T) *managerFixture {
	f := &managerFixture{
		store:  store.New(),
		runner: &deferredRunner{},
		source: &staticSource{sets: map[Key]FrameSet{
			{Folder: "knight", Animation: "idle"}:   frameSet(4, types.AllDirections...),
			{Folder: "knight", Animation: "walk"}:   frameSet(6, types.AllDirections...),
			{Folder: "knight", Animation: "attack"}: frameSet(4, types.AllDirections...),
		}},
	}
	bus := events.NewBus(events.NewBusOptions{})
	bus.SubscribeAll(func(ev events.Event) { f.events = append(f.events, ev) })
	loader := NewLoader(NewLoaderOptions{Source: f.source, Runner: f.runner, NewTexture: nilTexture})
	f.manager = NewManager(NewManagerOptions{Store: f.store, Loader: loader, Bus: bus})

	f.store.ApplyEntities([]types.EntitySummary{{
		UUID:     "k1",
		Name:     "Knight",
		Position: types.Cell{X: 1, Y: 1},
		Sprite:   &types.SpriteRef{Folder: "knight", IdleAnimation: "idle", Duration: 1},
	}})
	return f
}

func (f *managerFixture) topics() []events.Topic {
	out := make([]events.Topic, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Topic)
	}
	return out
}

// lifecycle drops progress events, which arrive once per frame.
func (f *managerFixture) lifecycle() []events.Event {
	out := make([]events.Event, 0, len(f.events))
	for _, ev := range f.events {
		if ev.Topic != events.TopicAnimationProgress {
			out = append(out, ev)
		}
	}
	return out
}

func (f *managerFixture) count(topic events.Topic) int {
	n := 0
	for _, ev := range f.events {
		if ev.Topic == topic {
			n++
		}
	}
	return n
}

func TestManager_FirstSightLoadsAndStarts(t *testing.T) {
	f := newManagerFixture(t)

	assert.Equal(t, 1, f.manager.Sync())
	s, ok := f.manager.Sprite("k1")
	require.True(t, ok)
	assert.Equal(t, Key{Folder: "knight", Animation: "idle"}, s.Key())
	assert.Nil(t, s.Image())

	f.runner.flush()
	assert.Equal(t, 4, s.Animation().FrameCount())
	assert.True(t, s.Animation().Loop())
}

func TestManager_SyncIsHashGated(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()

	assert.Equal(t, 0, f.manager.Sync())
}

func TestManager_DirectionChangeKeepsFrame(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()

	s, _ := f.manager.Sprite("k1")
	f.manager.Update(0.5)
	frame := s.Animation().FrameIndex()
	require.Equal(t, 2, frame)

	m, _ := f.store.Sprite("k1")
	m.CurrentDirection = types.DirectionE
	assert.Equal(t, 1, f.manager.Sync())
	assert.Equal(t, types.DirectionE, s.Direction())
	assert.Equal(t, frame, s.Animation().FrameIndex())
}

func TestManager_AnimationChangeRestarts(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()
	f.manager.Update(0.5)

	m, _ := f.store.Sprite("k1")
	m.SetAnimation(constants.AnimationWalk)
	f.manager.Sync()
	f.runner.flush()

	s, _ := f.manager.Sprite("k1")
	assert.Equal(t, constants.AnimationWalk, s.Key().Animation)
	assert.Equal(t, 0, s.Animation().FrameIndex())
	assert.Equal(t, 6, s.Animation().FrameCount())
}

func TestManager_CosmeticUpdateDoesNotInterrupt(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()
	f.manager.Update(0.5)
	s, _ := f.manager.Sprite("k1")
	anim := s.Animation()

	m, _ := f.store.Sprite("k1")
	m.Scale = 2
	m.Duration = 2
	f.manager.Sync()

	assert.Same(t, anim, s.Animation())
	assert.Equal(t, 2.0, s.Scale())
	assert.InDelta(t, 0.5, s.Animation().Progress(), 1e-9)
	assert.Equal(t, 2.0, s.Animation().Duration())
}

func TestManager_AttackPublishesImpactAndCompletion(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()

	m, _ := f.store.Sprite("k1")
	gen := m.SetAnimation(constants.AnimationAttack)
	f.manager.Sync()
	f.runner.flush()

	for i := 0; i < 120; i++ {
		f.manager.Update(1.0 / 60)
	}

	lifecycle := f.lifecycle()
	require.Len(t, lifecycle, 2)
	assert.Equal(t, events.TopicAttackImpact, lifecycle[0].Topic)
	assert.Equal(t, events.TopicAnimationCompleted, lifecycle[1].Topic)
	for _, ev := range f.events {
		assert.Equal(t, "k1", ev.EntityID)
		assert.Equal(t, gen, ev.Generation)
		assert.Equal(t, events.KindAttack, ev.Kind)
	}
	assert.GreaterOrEqual(t, lifecycle[0].Progress, constants.ImpactProgress)
}

func TestManager_OneShotPublishesProgressPerFrame(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()

	// looping idle stays quiet
	for i := 0; i < 120; i++ {
		f.manager.Update(1.0 / 60)
	}
	assert.Empty(t, f.events)

	m, _ := f.store.Sprite("k1")
	m.SetAnimation(constants.AnimationAttack)
	f.manager.Sync()
	f.runner.flush()
	for i := 0; i < 120; i++ {
		f.manager.Update(1.0 / 60)
	}

	s, _ := f.manager.Sprite("k1")
	var progress []float64
	for _, ev := range f.events {
		if ev.Topic == events.TopicAnimationProgress {
			assert.Equal(t, events.StatusPlaying, ev.Status)
			progress = append(progress, ev.Progress)
		}
	}
	// every frame after the first, the last one arriving with completion
	require.Len(t, progress, s.Animation().FrameCount()-1)
	assert.IsIncreasing(t, progress)
	assert.Less(t, progress[len(progress)-1], 1.0)
}

func TestManager_DirectionChangeDuringAttackFiresOnce(t *testing.T) {
	tests := []struct {
		name string
		// turnAfter is the number of ticks played before the turn.
		turnAfter int
	}{
		{name: "before impact", turnAfter: 5},
		{name: "just after impact", turnAfter: 27},
		{name: "after completion", turnAfter: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newManagerFixture(t)
			f.manager.Sync()
			f.runner.flush()

			m, _ := f.store.Sprite("k1")
			m.SetAnimation(constants.AnimationAttack)
			f.manager.Sync()
			f.runner.flush()

			for i := 0; i < tt.turnAfter; i++ {
				f.manager.Update(1.0 / 60)
			}
			m.CurrentDirection = types.DirectionW
			require.Equal(t, 1, f.manager.Sync())
			for i := 0; i < 120; i++ {
				f.manager.Update(1.0 / 60)
			}

			assert.Equal(t, 1, f.count(events.TopicAttackImpact))
			assert.Equal(t, 1, f.count(events.TopicAnimationCompleted))
		})
	}
}

func TestAnimation_Resume(t *testing.T) {
	prev := NewAnimation(NewAnimationOptions{FrameCount: 5, Duration: 1})
	prev.Update(0.55)
	require.Equal(t, 2, prev.FrameIndex())

	next := NewAnimation(NewAnimationOptions{FrameCount: 5, Duration: 1, StartFrame: prev.FrameIndex()})
	next.Resume(prev)
	assert.InDelta(t, prev.Progress(), next.Progress(), 1e-9)
	assert.Equal(t, 2, next.FrameIndex())

	impact, completed := next.Update(0.5)
	assert.Equal(t, prev.Progress() < constants.ImpactProgress, impact)
	assert.True(t, completed)
}

func TestManager_TimingRunsWhileFramesLoad(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	f.runner.flush()

	m, _ := f.store.Sprite("k1")
	m.SetAnimation(constants.AnimationAttack)
	f.manager.Sync()
	// frames still loading
	for i := 0; i < 120; i++ {
		f.manager.Update(1.0 / 60)
	}
	assert.Contains(t, f.topics(), events.TopicAnimationCompleted)
}

func TestManager_MissingFramesSkipDraw(t *testing.T) {
	f := newManagerFixture(t)
	f.store.ApplyEntities([]types.EntitySummary{{
		UUID:   "ghost",
		Sprite: &types.SpriteRef{Folder: "ghost", IdleAnimation: "idle"},
	}})
	f.manager.Sync()
	f.runner.flush()

	s, ok := f.manager.Sprite("ghost")
	require.True(t, ok)
	assert.Nil(t, s.Image())
	f.manager.Update(1)
}

func TestManager_RemovesVanishedEntities(t *testing.T) {
	f := newManagerFixture(t)
	f.manager.Sync()
	require.Equal(t, 1, f.manager.Len())

	f.store.ApplyEntities(nil)
	f.manager.Sync()
	assert.Equal(t, 0, f.manager.Len())
	assert.Empty(t, f.manager.hashes)
}
