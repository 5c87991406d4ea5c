package simstub

import (
	"fmt"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// NewDemoWorld creates a world with a short wall and three combatants.
func NewDemoWorld(opts NewWorldOptions) (*World, error) {
	w := NewWorld(opts)
	width, height := w.grid.Width, w.grid.Height
	midX := width / 2
	for y := height/2 - 2; y <= height/2+1; y++ {
		if y >= 0 && y < height {
			w.SetWall(types.Cell{X: midX, Y: y})
		}
	}

	roster := []EntityOptions{
		{
			ID:       "hero",
			Name:     "Hero",
			HP:       24,
			Armor:    2,
			Position: types.Cell{X: 1, Y: 1},
			Sprite:   &types.SpriteRef{Folder: "units/knight", IdleAnimation: "idle", Scale: 1},
		},
		{
			ID:       "orc",
			Name:     "Orc",
			HP:       16,
			Armor:    1,
			Position: types.Cell{X: width - 2, Y: height - 2},
			Sprite:   &types.SpriteRef{Folder: "units/orc", IdleAnimation: "idle", Scale: 1},
		},
		{
			ID:       "goblin",
			Name:     "Goblin",
			HP:       8,
			Position: types.Cell{X: width - 2, Y: 1},
			Sprite:   &types.SpriteRef{Folder: "units/goblin", IdleAnimation: "idle", Scale: 0.8, Duration: 0.6},
		},
	}
	for _, e := range roster {
		if err := w.AddEntity(e); err != nil {
			return nil, fmt.Errorf("failed to add %s: %v", e.ID, err)
		}
	}
	return w, nil
}
