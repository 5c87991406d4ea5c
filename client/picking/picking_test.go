package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	p := NewPicker(800, 600)
	p.Rebuild([]Entry{
		{ID: "back", X: 100, Y: 100, Width: 40, Height: 60, Order: 0},
		{ID: "front", X: 120, Y: 110, Width: 40, Height: 60, Order: 1},
		{ID: "edge", X: -20, Y: -20, Width: 40, Height: 40, Order: 0},
		{ID: "empty", X: 400, Y: 400, Width: 0, Height: 10, Order: 5},
	})

	tests := []struct {
		name   string
		x, y   float64
		want   string
		wantOK bool
	}{
		{name: "only back", x: 105, y: 105, want: "back", wantOK: true},
		{name: "overlap picks top", x: 130, y: 130, want: "front", wantOK: true},
		{name: "only front", x: 155, y: 165, want: "front", wantOK: true},
		{name: "partly off screen", x: 5, y: 5, want: "edge", wantOK: true},
		{name: "nothing", x: 500, y: 500, wantOK: false},
		{name: "zero sized box ignored", x: 400, y: 405, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Pick(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 3, p.Len())
}

func TestRebuild_ReplacesEntries(t *testing.T) {
	p := NewPicker(320, 240)
	p.Rebuild([]Entry{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}})
	p.Rebuild([]Entry{{ID: "b", X: 50, Y: 50, Width: 20, Height: 20}})

	_, ok := p.Pick(15, 15)
	assert.False(t, ok)
	got, ok := p.Pick(55, 55)
	assert.True(t, ok)
	assert.Equal(t, "b", got)
}

func TestResize_DropsEntries(t *testing.T) {
	p := NewPicker(320, 240)
	p.Rebuild([]Entry{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}})
	p.Resize(640, 480)
	assert.Equal(t, 0, p.Len())
	_, ok := p.Pick(15, 15)
	assert.False(t, ok)
}
