package sprites

import (
	"context"
	"image"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Runner runs blocking work off the render loop and calls done on it.
type Runner interface {
	Run(fn func(ctx context.Context) error, done func(err error))
}

// Frames holds GPU textures per direction.
type Frames map[types.Direction][]*ebiten.Image

// Loader loads frame sets asynchronously and caches them per key.
type Loader struct {
	source     AssetSource
	runner     Runner
	newTexture func(img image.Image) *ebiten.Image
	logger     *log.Logger

	cache   map[Key]Frames
	failed  map[Key]error
	pending map[Key][]func(Frames, error)
}

type NewLoaderOptions struct {
	Source AssetSource
	Runner Runner
	// NewTexture uploads a decoded frame. Defaults to ebiten.NewImageFromImage.
	NewTexture func(img image.Image) *ebiten.Image
	Logger     *log.Logger
}

func NewLoader(opts NewLoaderOptions) *Loader {
	newTexture := opts.NewTexture
	if newTexture == nil {
		newTexture = ebiten.NewImageFromImage
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		source:     opts.Source,
		runner:     opts.Runner,
		newTexture: newTexture,
		logger:     logger.With("component", "sprites"),
		cache:      make(map[Key]Frames),
		failed:     make(map[Key]error),
		pending:    make(map[Key][]func(Frames, error)),
	}
}

// Get returns the cached frames for key.
func (l *Loader) Get(key Key) (Frames, bool) {
	f, ok := l.cache[key]
	return f, ok
}

// Request calls cb with the frames for key, loading them first if needed.
// cb runs on the render loop. A key that failed to load is not retried.
func (l *Loader) Request(key Key, cb func(Frames, error)) {
	if f, ok := l.cache[key]; ok {
		cb(f, nil)
		return
	}
	if err, ok := l.failed[key]; ok {
		cb(nil, err)
		return
	}
	if waiting, ok := l.pending[key]; ok {
		l.pending[key] = append(waiting, cb)
		return
	}
	l.pending[key] = []func(Frames, error){cb}

	var set FrameSet
	l.runner.Run(func(ctx context.Context) error {
		var err error
		set, err = l.source.Load(ctx, key)
		return err
	}, func(err error) {
		l.finish(key, set, err)
	})
}

func (l *Loader) finish(key Key, set FrameSet, err error) {
	waiting := l.pending[key]
	delete(l.pending, key)

	var frames Frames
	if err != nil {
		l.logger.Warn("Failed to load sprite frames %s: %v", key, err)
		l.failed[key] = err
	} else {
		frames = make(Frames, len(set))
		for dir, imgs := range set {
			textures := make([]*ebiten.Image, 0, len(imgs))
			for _, img := range imgs {
				textures = append(textures, l.newTexture(img))
			}
			frames[dir] = textures
		}
		l.cache[key] = frames
		l.logger.Debug("Loaded sprite frames %s (%d directions)", key, len(frames))
	}

	for _, cb := range waiting {
		cb(frames, err)
	}
}

// Pending reports whether key is being loaded.
func (l *Loader) Pending(key Key) bool {
	_, ok := l.pending[key]
	return ok
}
