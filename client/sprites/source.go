package sprites

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// Key addresses one directional frame set.
type Key struct {
	Folder    string
	Animation string
}

func (k Key) String() string {
	return path.Join(k.Folder, k.Animation)
}

// FrameSet holds decoded frames per direction, in playback order.
type FrameSet map[types.Direction][]image.Image

// AssetSource provides frame sets.
type AssetSource interface {
	Load(ctx context.Context, key Key) (FrameSet, error)
}

// FSSource reads frames from "<folder>/<animation>/<name>_<DIR>_<n>.png".
type FSSource struct {
	fsys fs.FS
}

func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) Load(ctx context.Context, key Key) (FrameSet, error) {
	dir := key.String()
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	groups := GroupFrames(names)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no frames found in %s", dir)
	}

	set := make(FrameSet, len(groups))
	for direction, files := range groups {
		for _, name := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			img, err := s.decode(path.Join(dir, name))
			if err != nil {
				return nil, err
			}
			set[direction] = append(set[direction], img)
		}
	}
	return set, nil
}

func (s *FSSource) decode(name string) (image.Image, error) {
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %v", name, err)
	}
	return img, nil
}
