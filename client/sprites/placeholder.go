package sprites

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

const (
	placeholderWidth  = 32
	placeholderHeight = 48
	placeholderFrames = 4
)

// PlaceholderSource generates flat coloured frames for any key. It is used
// when no asset directory is configured.
type PlaceholderSource struct{}

func (PlaceholderSource) Load(ctx context.Context, key Key) (FrameSet, error) {
	h := fnv.New32a()
	h.Write([]byte(key.Folder))
	sum := h.Sum32()
	body := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	set := make(FrameSet, len(types.AllDirections))
	for _, dir := range types.AllDirections {
		for i := 0; i < placeholderFrames; i++ {
			set[dir] = append(set[dir], placeholderFrame(body, dir, i))
		}
	}
	return set, nil
}

func placeholderFrame(body color.RGBA, dir types.Direction, frame int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	// bob up and down a pixel per frame
	top := 4 + frame%2
	for y := top; y < placeholderHeight; y++ {
		for x := 4; x < placeholderWidth-4; x++ {
			img.Set(x, y, body)
		}
	}
	// facing marker
	mx := placeholderWidth/2 + facingOffset(dir)
	for y := top + 4; y < top+10; y++ {
		for x := mx - 2; x < mx+2; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func facingOffset(dir types.Direction) int {
	switch dir {
	case types.DirectionE, types.DirectionNE, types.DirectionSE:
		return 8
	case types.DirectionW, types.DirectionNW, types.DirectionSW:
		return -8
	default:
		return 0
	}
}
