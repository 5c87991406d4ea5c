// Package simstub is an in-memory battle map simulation with an HTTP API,
// used for local development and tests.
package simstub

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

const (
	DefaultWidth       = 12
	DefaultHeight      = 12
	DefaultSightRadius = 4
	DefaultMoveBudget  = 6
	DefaultActions     = 1
	DefaultReactions   = 1
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalid   = errors.New("invalid request")
	ErrExhausted = errors.New("no budget left")
)

type entity struct {
	summary types.EntitySummary
	economy types.ActionEconomy
	armor   int
}

// World is the authoritative simulation state. It is safe for concurrent use.
type World struct {
	mu          sync.Mutex
	grid        *types.Grid
	entities    map[string]*entity
	rng         *rand.Rand
	sightRadius int
	moveBudget  int
}

type NewWorldOptions struct {
	Width  int
	Height int
	// Seed makes attack rolls deterministic.
	Seed        int64
	SightRadius int
	MoveBudget  int
}

// NewWorld creates a world whose every cell is walkable ground.
func NewWorld(opts NewWorldOptions) *World {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.SightRadius <= 0 {
		opts.SightRadius = DefaultSightRadius
	}
	if opts.MoveBudget <= 0 {
		opts.MoveBudget = DefaultMoveBudget
	}
	grid := types.NewGrid(opts.Width, opts.Height)
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			grid.SetTile(&types.Tile{Position: types.Cell{X: x, Y: y}, Walkable: true, Visible: true, Sprite: "ground"})
		}
	}
	return &World{
		grid:        grid,
		entities:    make(map[string]*entity),
		rng:         rand.New(rand.NewSource(opts.Seed)),
		sightRadius: opts.SightRadius,
		moveBudget:  opts.MoveBudget,
	}
}

// EntityOptions describes an entity added to the world.
type EntityOptions struct {
	ID       string
	Name     string
	HP       int
	Armor    int
	Position types.Cell
	Sprite   *types.SpriteRef
}

// AddEntity places a new entity on a free walkable cell.
func (w *World) AddEntity(opts EntityOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if opts.ID == "" {
		return fmt.Errorf("%w: entity id is required", ErrInvalid)
	}
	if _, ok := w.entities[opts.ID]; ok {
		return fmt.Errorf("%w: entity %s already exists", ErrInvalid, opts.ID)
	}
	if !w.grid.Walkable(opts.Position) || w.occupied(opts.Position, "") {
		return fmt.Errorf("%w: cell %v is not free", ErrInvalid, opts.Position)
	}
	e := &entity{
		summary: types.EntitySummary{
			UUID:     opts.ID,
			Name:     opts.Name,
			HP:       opts.HP,
			MaxHP:    opts.HP,
			Position: opts.Position,
			Sprite:   opts.Sprite,
		},
		economy: w.freshEconomy(),
		armor:   opts.Armor,
	}
	w.entities[opts.ID] = e
	w.updateSenses()
	return nil
}

func (w *World) freshEconomy() types.ActionEconomy {
	return types.ActionEconomy{Actions: DefaultActions, Movement: w.moveBudget, Reactions: DefaultReactions}
}

// SetWall replaces the tile at c with an unwalkable one.
func (w *World) SetWall(c types.Cell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.grid.SetTile(&types.Tile{Position: c, Walkable: false, Visible: true, Sprite: "wall"})
	w.updateSenses()
}

func (w *World) occupied(c types.Cell, except string) bool {
	for id, e := range w.entities {
		if id != except && e.summary.Position == c && !e.summary.IsDead() {
			return true
		}
	}
	return false
}

func (w *World) FetchEntities(ctx context.Context) ([]types.EntitySummary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]string, 0, len(w.entities))
	for id := range w.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]types.EntitySummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, *w.entities[id].summary.Copy())
	}
	return out, nil
}

func (w *World) FetchGrid(ctx context.Context) (*types.Grid, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.grid.Copy(), nil
}

func (w *World) CreateTile(ctx context.Context, tile types.Tile) (*types.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.grid.InBounds(tile.Position) {
		return nil, fmt.Errorf("%w: tile %v is outside the grid", ErrInvalid, tile.Position)
	}
	t := tile
	w.grid.SetTile(&t)
	w.updateSenses()
	created := t
	return &created, nil
}

func (w *World) DeleteTile(ctx context.Context, cell types.Cell) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.grid.Tile(cell); !ok {
		return fmt.Errorf("%w: no tile at %v", ErrNotFound, cell)
	}
	w.grid.RemoveTile(cell)
	w.updateSenses()
	return nil
}

// MoveEntity walks the entity to target along its precomputed path.
func (w *World) MoveEntity(ctx context.Context, entityID string, target types.Cell) (*types.MoveResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[entityID]
	if !ok {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, entityID)
	}
	if e.summary.IsDead() {
		return nil, fmt.Errorf("%w: entity %s is dead", ErrInvalid, entityID)
	}
	path, ok := e.summary.Senses.PathTo(target)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not reachable from %v", ErrInvalid, target, e.summary.Position)
	}
	if len(path) > e.economy.Movement {
		return nil, fmt.Errorf("%w: %d steps requested with %d movement left", ErrExhausted, len(path), e.economy.Movement)
	}

	pathSenses := make(map[string]types.Senses, len(path))
	senses := e.summary.Senses
	for _, step := range path {
		e.summary.Position = step
		next := w.sensesFor(e)
		senses = next.MergeSeen(senses)
		pathSenses[step.Key()] = senses.Copy()
	}
	e.summary.Senses = senses
	e.economy.Movement -= len(path)
	w.updateSenses()

	return &types.MoveResponse{
		Entity:     *e.summary.Copy(),
		PathSenses: pathSenses,
	}, nil
}

// ExecuteAttack resolves a melee attack with a d20 roll against the
// target's armor. A natural 20 is a critical hit for double damage.
func (w *World) ExecuteAttack(ctx context.Context, attackerID, targetID string) (*types.AttackResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	attacker, ok := w.entities[attackerID]
	if !ok {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, attackerID)
	}
	target, ok := w.entities[targetID]
	if !ok {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, targetID)
	}
	if attackerID == targetID {
		return nil, fmt.Errorf("%w: an entity cannot attack itself", ErrInvalid)
	}
	if attacker.economy.Actions <= 0 {
		return nil, fmt.Errorf("%w: %s has no actions left", ErrExhausted, attackerID)
	}
	if attacker.summary.IsDead() || target.summary.IsDead() {
		return nil, fmt.Errorf("%w: dead entities cannot fight", ErrInvalid)
	}
	if !attacker.summary.Position.Adjacent(target.summary.Position) {
		return nil, fmt.Errorf("%w: %s is not adjacent to %s", ErrInvalid, targetID, attackerID)
	}
	attacker.economy.Actions--

	roll := w.rng.Intn(20) + 1
	resp := &types.AttackResponse{}
	if roll == 20 || roll >= 10+target.armor {
		resp.Hit = true
		resp.Critical = roll == 20
		resp.Damage = w.rng.Intn(6) + 2
		if resp.Critical {
			resp.Damage *= 2
		}
		target.summary.HP -= resp.Damage
		if target.summary.HP < 0 {
			target.summary.HP = 0
		}
	}
	resp.TargetHP = target.summary.HP
	w.updateSenses()
	return resp, nil
}

func (w *World) RefreshActionEconomy(ctx context.Context, entityID string) (*types.ActionEconomy, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[entityID]
	if !ok {
		return nil, fmt.Errorf("%w: entity %s", ErrNotFound, entityID)
	}
	e.economy = w.freshEconomy()
	w.updateSenses()
	economy := e.economy
	return &economy, nil
}

// Economy returns the remaining budget of an entity.
func (w *World) Economy(entityID string) (types.ActionEconomy, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[entityID]
	if !ok {
		return types.ActionEconomy{}, false
	}
	return e.economy, true
}
