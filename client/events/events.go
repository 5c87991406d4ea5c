package events

import (
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/types"
)

// Topic names an event lifecycle channel.
type Topic string

// Animation lifecycle topics
const (
	TopicAnimationQueued    Topic = "animation:queued"
	TopicAnimationStarted   Topic = "animation:started"
	TopicAnimationProgress  Topic = "animation:progress"
	TopicAnimationCompleted Topic = "animation:completed"
	TopicAnimationCancelled Topic = "animation:cancelled"
)

// Server reconciliation topics
const (
	TopicAnimationOrphaned Topic = "animation:orphaned"
	TopicAnimationAdopted  Topic = "animation:adopted"
	TopicAnimationRejected Topic = "animation:rejected"
)

// Combat topics
const (
	TopicAttackStarted   Topic = "attack:started"
	TopicAttackImpact    Topic = "attack:impact"
	TopicAttackCompleted Topic = "attack:completed"
)

// Movement topics
const (
	TopicMovementStarted          Topic = "movement:started"
	TopicMovementSegmentCompleted Topic = "movement:segment-completed"
	TopicMovementDirectionChanged Topic = "movement:direction-changed"
	TopicMovementCompleted        Topic = "movement:completed"
)

// Side-effect and ordering topics
const (
	TopicEffectTrigger Topic = "effect:trigger"
	TopicSoundTrigger  Topic = "sound:trigger"
	TopicZOrderChange  Topic = "zorder:change"
	// TopicZOrderRequest asks the z-order manager to set or clear an
	// override; the manager answers with TopicZOrderChange.
	TopicZOrderRequest Topic = "zorder:request"
)

// Status is the lifecycle state carried by an event.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPlaying   Status = "playing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOrphan    Status = "orphan"
	StatusAdopted   Status = "adopted"
	StatusRejected  Status = "rejected"
)

// Kind identifies what sort of animation an event refers to.
type Kind string

const (
	KindMovement Kind = "movement"
	KindAttack   Kind = "attack"
	KindDamage   Kind = "damage"
	KindSprite   Kind = "sprite"
	KindEffect   Kind = "effect"
)

// Event is a transient animation event. Generation is the animation
// generation of the entity at publish time; handlers compare it against
// the current generation to drop stale notifications.
type Event struct {
	ID         string
	Topic      Topic
	EntityID   string
	Kind       Kind
	Status     Status
	Progress   float64
	Generation uint64
	StartedAt  time.Time
	Timestamp  time.Time
	Payload    interface{}
}

// AttackPayload accompanies attack and reconciliation events for attacks.
type AttackPayload struct {
	AttackerID string
	TargetID   string
	// Resolved is true once the simulation has adopted the attack.
	Resolved bool
	Hit      bool
	Damage   int
	Critical bool
}

// MovementPayload accompanies movement events.
type MovementPayload struct {
	From      types.Cell
	To        types.Cell
	Direction types.Direction
	Step      int
	Steps     int
}

// SpritePayload accompanies sprite lifecycle events.
type SpritePayload struct {
	Animation string
	Direction types.Direction
}

// ZOrderPayload requests a z-index override change.
type ZOrderPayload struct {
	ZIndex int
	Clear  bool
}

// EffectPayload requests a visual or audio side effect.
type EffectPayload struct {
	Name     string
	Cell     types.Cell
	TargetID string
	Text     string
}
