package store

import (
	"math"
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// MovementState is the per-entity movement state machine.
type MovementState uint8

const (
	MovementIdle MovementState = iota
	MovementMoving
	MovementResyncing
)

func (s MovementState) String() string {
	switch s {
	case MovementIdle:
		return "idle"
	case MovementMoving:
		return "moving"
	case MovementResyncing:
		return "resyncing"
	default:
		return "unknown"
	}
}

// Vec is a continuous grid-space position.
type Vec struct {
	X float64
	Y float64
}

// VecOf returns the centre of a cell.
func VecOf(c types.Cell) Vec {
	return Vec{X: float64(c.X), Y: float64(c.Y)}
}

// Cell returns the nearest cell.
func (v Vec) Cell() types.Cell {
	return types.Cell{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// Dist returns the euclidean distance between two positions.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Lerp returns the position a fraction t of the way from v to o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{X: v.X + (o.X-v.X)*t, Y: v.Y + (o.Y-v.Y)*t}
}

// SpriteMapping is the client-owned visual state of one entity.
//
// VisualPosition is where the entity is drawn; the entity summary's
// Position is where it is. The two are reconciled only when a movement
// completes or is rolled back.
type SpriteMapping struct {
	EntityID         string
	SpriteFolder     string
	IdleAnimation    string
	CurrentAnimation string
	CurrentDirection types.Direction
	MovementState    MovementState
	VisualPosition   Vec
	IsPositionSynced bool
	Scale            float64
	Duration         float64
	// Generation increments every time CurrentAnimation is (re)started.
	Generation uint64
}

// SetAnimation switches the current animation and bumps the generation.
func (m *SpriteMapping) SetAnimation(name string) uint64 {
	m.CurrentAnimation = name
	m.Generation++
	return m.Generation
}

// ApprovalState is the server reconciliation state of an optimistic move.
type ApprovalState uint8

const (
	ApprovalPending ApprovalState = iota
	ApprovalApproved
	ApprovalRejected
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalPending:
		return "pending"
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MovementAnimation is an in-flight movement along a path. Path includes
// the starting cell at index 0.
type MovementAnimation struct {
	EntityID            string
	Path                []types.Cell
	CurrentPathIndex    int
	// SegmentProgress is how far along the segment after CurrentPathIndex
	// the entity is, from 0 to 1. Every segment takes 1/Speed seconds,
	// diagonal or not.
	SegmentProgress     float64
	StartTime           time.Time
	Speed               float64
	TargetPosition      types.Cell
	ServerApprovalState ApprovalState
	// PathSenses holds the mover's senses per intended step, keyed by "x,y".
	PathSenses map[string]types.Senses
	// StartSenses is the mover's senses when the movement began.
	StartSenses types.Senses
	// Finished is set once the visual path has been walked.
	Finished bool
}

// AttackStatus is the reconciliation state of an optimistic attack.
type AttackStatus uint8

const (
	AttackOptimistic AttackStatus = iota
	AttackAdopted
	AttackRejected
)

func (s AttackStatus) String() string {
	switch s {
	case AttackOptimistic:
		return "optimistic"
	case AttackAdopted:
		return "adopted"
	case AttackRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// AttackAnimation is an in-flight attack.
type AttackAnimation struct {
	AttackerID string
	TargetID   string
	Status     AttackStatus
	// Generation is the attacker's animation generation when the strike started.
	Generation uint64
	StartTime  time.Time
	Result     *types.AttackResponse
	// Finished is set once the strike animation has played out.
	Finished bool
}

// ViewState is the camera and pointer state.
type ViewState struct {
	TileSize    float64
	OffsetX     float64
	OffsetY     float64
	HoveredCell types.Cell
	HasHover    bool
	// Panning is set while the camera is being dragged. Hover and
	// highlight rendering are skipped while it is set.
	Panning bool
}
