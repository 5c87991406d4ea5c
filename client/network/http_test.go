package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/simstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubSimulation(t *testing.T) (*HTTPSimulation, *simstub.World) {
	t.Helper()
	world := simstub.NewWorld(simstub.NewWorldOptions{Width: 6, Height: 6, Seed: 3})
	require.NoError(t, world.AddEntity(simstub.EntityOptions{ID: "hero", Name: "Hero", HP: 10, Position: types.Cell{X: 1, Y: 1}}))
	require.NoError(t, world.AddEntity(simstub.EntityOptions{ID: "orc", Name: "Orc", HP: 10, Position: types.Cell{X: 2, Y: 2}}))
	server := httptest.NewServer(simstub.NewRouter(world))
	t.Cleanup(server.Close)
	return NewHTTPSimulation(NewHTTPSimulationOptions{BaseURL: server.URL + "/"}), world
}

func TestHTTPSimulation_Fetch(t *testing.T) {
	sim, _ := newStubSimulation(t)
	ctx := context.Background()

	grid, err := sim.FetchGrid(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, grid.Width)
	assert.Len(t, grid.Tiles, 36)

	entities, err := sim.FetchEntities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "hero", entities[0].UUID)
	assert.NotEmpty(t, entities[0].Senses.Visible)
	_, ok := entities[0].Senses.PathTo(types.Cell{X: 3, Y: 1})
	assert.True(t, ok)
}

func TestHTTPSimulation_Move(t *testing.T) {
	sim, _ := newStubSimulation(t)
	resp, err := sim.MoveEntity(context.Background(), "hero", types.Cell{X: 3, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, types.Cell{X: 3, Y: 1}, resp.Entity.Position)
	assert.Contains(t, resp.PathSenses, "3,1")

	_, err = sim.MoveEntity(context.Background(), "ghost", types.Cell{X: 3, Y: 1})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestHTTPSimulation_Attack(t *testing.T) {
	sim, _ := newStubSimulation(t)
	resp, err := sim.ExecuteAttack(context.Background(), "hero", "orc")
	require.NoError(t, err)
	assert.Equal(t, 10-resp.Damage, resp.TargetHP)

	_, err = sim.ExecuteAttack(context.Background(), "hero", "orc")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))

	economy, err := sim.RefreshActionEconomy(context.Background(), "hero")
	require.NoError(t, err)
	assert.Equal(t, simstub.DefaultActions, economy.Actions)
}

func TestHTTPSimulation_Tiles(t *testing.T) {
	sim, world := newStubSimulation(t)
	ctx := context.Background()

	require.NoError(t, sim.DeleteTile(ctx, types.Cell{X: 5, Y: 5}))
	err := sim.DeleteTile(ctx, types.Cell{X: 5, Y: 5})
	require.Error(t, err)
	reqErr := &RequestError{}
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "no tile")

	created, err := sim.CreateTile(ctx, types.Tile{Position: types.Cell{X: 5, Y: 5}, Walkable: false})
	require.NoError(t, err)
	assert.Equal(t, types.Cell{X: 5, Y: 5}, created.Position)

	grid, err := world.FetchGrid(ctx)
	require.NoError(t, err)
	assert.False(t, grid.Walkable(types.Cell{X: 5, Y: 5}))
}

func TestHTTPSimulation_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	sim := NewHTTPSimulation(NewHTTPSimulationOptions{BaseURL: server.URL})
	_, err := sim.FetchGrid(context.Background())
	assert.Error(t, err)
	assert.False(t, IsStatus(err, http.StatusNotFound))
}
