// Package render draws the battle map layers.
package render

import (
	"image"
	"image/color"

	"github.com/cbodonnell/skirmish/client/iso"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var whitePixel *ebiten.Image

// whiteSubImage is the source texture for untextured triangles.
func whiteSubImage() *ebiten.Image {
	if whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whitePixel
}

// Batch accumulates filled diamonds into a single DrawTriangles call.
type Batch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

// Reset empties the batch, keeping its buffers.
func (b *Batch) Reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}

// Len returns the number of diamonds in the batch.
func (b *Batch) Len() int {
	return len(b.vertices) / 4
}

// AddDiamond appends the quad spanned by corners, tinted with clr at the
// given opacity.
func (b *Batch) AddDiamond(corners [4]iso.Point, clr color.Color, alpha float32) {
	r, g, bl, a := clr.RGBA()
	cr := float32(r) / 0xffff
	cg := float32(g) / 0xffff
	cb := float32(bl) / 0xffff
	ca := float32(a) / 0xffff * alpha

	base := uint16(len(b.vertices))
	for _, p := range corners {
		b.vertices = append(b.vertices, ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   1,
			SrcY:   1,
			ColorR: cr * alpha,
			ColorG: cg * alpha,
			ColorB: cb * alpha,
			ColorA: ca,
		})
	}
	b.indices = append(b.indices, base, base+1, base+2, base, base+2, base+3)
}

// Draw renders the batch onto screen.
func (b *Batch) Draw(screen *ebiten.Image) {
	if len(b.vertices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(b.vertices, b.indices, whiteSubImage(), op)
}

// Segment is a stroked line in screen space.
type Segment struct {
	From iso.Point
	To   iso.Point
}

// diamondOutline returns the four edges of a diamond.
func diamondOutline(corners [4]iso.Point) []Segment {
	out := make([]Segment, 0, 4)
	for i := range corners {
		out = append(out, Segment{From: corners[i], To: corners[(i+1)%4]})
	}
	return out
}

func strokeSegments(screen *ebiten.Image, segments []Segment, width float32, clr color.Color) {
	for _, s := range segments {
		vector.StrokeLine(screen, float32(s.From.X), float32(s.From.Y), float32(s.To.X), float32(s.To.Y), width, clr, true)
	}
}
