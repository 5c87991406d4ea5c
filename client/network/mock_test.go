package network

import (
	"context"

	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/stretchr/testify/mock"
)

type mockSimulation struct {
	mock.Mock
}

func (m *mockSimulation) FetchEntities(ctx context.Context) ([]types.EntitySummary, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]types.EntitySummary)
	return list, args.Error(1)
}

func (m *mockSimulation) FetchGrid(ctx context.Context) (*types.Grid, error) {
	args := m.Called(ctx)
	grid, _ := args.Get(0).(*types.Grid)
	return grid, args.Error(1)
}

func (m *mockSimulation) CreateTile(ctx context.Context, tile types.Tile) (*types.Tile, error) {
	args := m.Called(ctx, tile)
	t, _ := args.Get(0).(*types.Tile)
	return t, args.Error(1)
}

func (m *mockSimulation) DeleteTile(ctx context.Context, cell types.Cell) error {
	args := m.Called(ctx, cell)
	return args.Error(0)
}

func (m *mockSimulation) MoveEntity(ctx context.Context, entityID string, target types.Cell) (*types.MoveResponse, error) {
	args := m.Called(ctx, entityID, target)
	resp, _ := args.Get(0).(*types.MoveResponse)
	return resp, args.Error(1)
}

func (m *mockSimulation) ExecuteAttack(ctx context.Context, attackerID, targetID string) (*types.AttackResponse, error) {
	args := m.Called(ctx, attackerID, targetID)
	resp, _ := args.Get(0).(*types.AttackResponse)
	return resp, args.Error(1)
}

func (m *mockSimulation) RefreshActionEconomy(ctx context.Context, entityID string) (*types.ActionEconomy, error) {
	args := m.Called(ctx, entityID)
	resp, _ := args.Get(0).(*types.ActionEconomy)
	return resp, args.Error(1)
}
