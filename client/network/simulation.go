package network

import (
	"context"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// Simulation is the remote authority for the battle map. Every call may
// block on I/O and must never be made from the render loop directly; use
// an AsyncRunner.
type Simulation interface {
	FetchEntities(ctx context.Context) ([]types.EntitySummary, error)
	FetchGrid(ctx context.Context) (*types.Grid, error)
	CreateTile(ctx context.Context, tile types.Tile) (*types.Tile, error)
	DeleteTile(ctx context.Context, cell types.Cell) error
	MoveEntity(ctx context.Context, entityID string, target types.Cell) (*types.MoveResponse, error)
	ExecuteAttack(ctx context.Context, attackerID, targetID string) (*types.AttackResponse, error)
	RefreshActionEconomy(ctx context.Context, entityID string) (*types.ActionEconomy, error)
}
