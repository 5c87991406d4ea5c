package simstub

import (
	"context"
	"testing"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := NewWorld(NewWorldOptions{Width: 8, Height: 8, Seed: 1, SightRadius: 2, MoveBudget: 3})
	require.NoError(t, w.AddEntity(EntityOptions{ID: "hero", HP: 10, Position: types.Cell{X: 1, Y: 1}}))
	require.NoError(t, w.AddEntity(EntityOptions{ID: "orc", HP: 10, Position: types.Cell{X: 2, Y: 2}}))
	return w
}

func summary(t *testing.T, w *World, id string) types.EntitySummary {
	t.Helper()
	list, err := w.FetchEntities(context.Background())
	require.NoError(t, err)
	for _, e := range list {
		if e.UUID == id {
			return e
		}
	}
	t.Fatalf("entity %s not found", id)
	return types.EntitySummary{}
}

func TestAddEntity_Rejections(t *testing.T) {
	w := newTestWorld(t)
	tests := []struct {
		name string
		opts EntityOptions
	}{
		{name: "missing id", opts: EntityOptions{Position: types.Cell{X: 5, Y: 5}}},
		{name: "duplicate", opts: EntityOptions{ID: "hero", Position: types.Cell{X: 5, Y: 5}}},
		{name: "occupied", opts: EntityOptions{ID: "x", Position: types.Cell{X: 1, Y: 1}}},
		{name: "outside", opts: EntityOptions{ID: "x", Position: types.Cell{X: 9, Y: 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, w.AddEntity(tt.opts), ErrInvalid)
		})
	}
}

func TestSenses(t *testing.T) {
	w := newTestWorld(t)
	w.SetWall(types.Cell{X: 1, Y: 2})
	hero := summary(t, w, "hero")

	// radius 2 around (1,1) clipped to the grid is 4x4 cells
	assert.Len(t, hero.Senses.Visible, 16)
	assert.True(t, hero.Senses.Seen.Contains(hero.Senses.Visible))

	path, ok := hero.Senses.PathTo(types.Cell{X: 3, Y: 1})
	require.True(t, ok)
	assert.Len(t, path, 2)
	assert.Equal(t, types.Cell{X: 3, Y: 1}, path[len(path)-1])

	_, ok = hero.Senses.PathTo(types.Cell{X: 2, Y: 2})
	assert.False(t, ok, "occupied cells are not reachable")
	_, ok = hero.Senses.PathTo(types.Cell{X: 1, Y: 2})
	assert.False(t, ok, "walls are not reachable")
	_, ok = hero.Senses.PathTo(types.Cell{X: 5, Y: 1})
	assert.False(t, ok, "cells beyond the move budget are not reachable")

	for key, steps := range hero.Senses.Paths {
		for i := 1; i < len(steps); i++ {
			assert.True(t, steps[i-1].Adjacent(steps[i]), "path to %s is not contiguous", key)
		}
		assert.True(t, hero.Position.Adjacent(steps[0]))
	}
}

func TestMoveEntity(t *testing.T) {
	w := newTestWorld(t)
	before := summary(t, w, "hero")

	resp, err := w.MoveEntity(context.Background(), "hero", types.Cell{X: 4, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, types.Cell{X: 4, Y: 1}, resp.Entity.Position)
	assert.Len(t, resp.PathSenses, 3)
	for _, step := range []types.Cell{{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}} {
		senses, ok := resp.PathSenses[step.Key()]
		require.True(t, ok, "missing senses for %v", step)
		assert.True(t, senses.Visible.Has(step))
	}
	assert.True(t, resp.Entity.Senses.Seen.Contains(before.Senses.Seen), "seen never shrinks")

	economy, ok := w.Economy("hero")
	require.True(t, ok)
	assert.Equal(t, 0, economy.Movement)

	_, err = w.MoveEntity(context.Background(), "hero", types.Cell{X: 5, Y: 1})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = w.RefreshActionEconomy(context.Background(), "hero")
	require.NoError(t, err)
	_, err = w.MoveEntity(context.Background(), "hero", types.Cell{X: 5, Y: 1})
	assert.NoError(t, err)
}

func TestMoveEntity_Errors(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.MoveEntity(context.Background(), "ghost", types.Cell{X: 1, Y: 2})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = w.MoveEntity(context.Background(), "hero", types.Cell{X: 7, Y: 7})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestExecuteAttack(t *testing.T) {
	w := newTestWorld(t)
	resp, err := w.ExecuteAttack(context.Background(), "hero", "orc")
	require.NoError(t, err)
	if resp.Hit {
		assert.Greater(t, resp.Damage, 0)
	} else {
		assert.Equal(t, 0, resp.Damage)
	}
	assert.Equal(t, 10-resp.Damage, resp.TargetHP)
	assert.Equal(t, resp.TargetHP, summary(t, w, "orc").HP)

	_, err = w.ExecuteAttack(context.Background(), "hero", "orc")
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestExecuteAttack_Deterministic(t *testing.T) {
	a, err := newTestWorld(t).ExecuteAttack(context.Background(), "hero", "orc")
	require.NoError(t, err)
	b, err := newTestWorld(t).ExecuteAttack(context.Background(), "hero", "orc")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExecuteAttack_Errors(t *testing.T) {
	w := newTestWorld(t)
	require.NoError(t, w.AddEntity(EntityOptions{ID: "far", HP: 5, Position: types.Cell{X: 6, Y: 6}}))
	tests := []struct {
		name     string
		attacker string
		target   string
		want     error
	}{
		{name: "unknown attacker", attacker: "ghost", target: "orc", want: ErrNotFound},
		{name: "unknown target", attacker: "hero", target: "ghost", want: ErrNotFound},
		{name: "self", attacker: "hero", target: "hero", want: ErrInvalid},
		{name: "not adjacent", attacker: "hero", target: "far", want: ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.ExecuteAttack(context.Background(), tt.attacker, tt.target)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTiles(t *testing.T) {
	w := newTestWorld(t)
	ctx := context.Background()

	require.NoError(t, w.DeleteTile(ctx, types.Cell{X: 3, Y: 1}))
	assert.ErrorIs(t, w.DeleteTile(ctx, types.Cell{X: 3, Y: 1}), ErrNotFound)
	hero := summary(t, w, "hero")
	assert.False(t, hero.Senses.Visible.Has(types.Cell{X: 3, Y: 1}))

	_, err := w.CreateTile(ctx, types.Tile{Position: types.Cell{X: 3, Y: 1}, Walkable: true})
	require.NoError(t, err)
	_, err = w.CreateTile(ctx, types.Tile{Position: types.Cell{X: 30, Y: 1}})
	assert.ErrorIs(t, err, ErrInvalid)

	grid, err := w.FetchGrid(ctx)
	require.NoError(t, err)
	assert.True(t, grid.Walkable(types.Cell{X: 3, Y: 1}))
}

func TestNewDemoWorld(t *testing.T) {
	w, err := NewDemoWorld(NewWorldOptions{Seed: 7})
	require.NoError(t, err)
	list, err := w.FetchEntities(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, e := range list {
		assert.NotNil(t, e.Sprite)
		assert.NotEmpty(t, e.Senses.Visible)
	}
}
