package constants

import "time"

const (
	// TileWidth is the on-screen width of a diamond tile at zoom 1
	TileWidth float64 = 64.0
	// TileHeight is the on-screen height of a diamond tile at zoom 1
	TileHeight float64 = 32.0
	// SidePanelWidth is the screen width reserved for the side panel
	SidePanelWidth float64 = 240.0
	// MinZoom is the smallest allowed tile scale
	MinZoom float64 = 0.25
	// MaxZoom is the largest allowed tile scale
	MaxZoom float64 = 4.0

	// MoveSpeed is the default movement speed in cells per second
	MoveSpeed float64 = 4.0
	// AnticipationThreshold is the fraction of a path segment after which
	// the next cell's senses are treated as current
	AnticipationThreshold float64 = 0.5

	// ImpactProgress is the normalized progress of a one-shot animation at
	// which the impact instant is signalled
	ImpactProgress float64 = 0.4
	// DefaultAnimationDuration is the play time of one animation cycle in seconds
	DefaultAnimationDuration float64 = 0.8
	// DefaultSpriteScale is the sprite scale used when the simulation sends none
	DefaultSpriteScale float64 = 1.0

	// AttackChainTimeout bounds how long a move-then-attack may wait for the move to finish
	AttackChainTimeout = 10 * time.Second
	// PollInterval is how often entity snapshots are fetched from the simulation
	PollInterval = 2 * time.Second
	// RequestTimeout bounds a single simulation request
	RequestTimeout = 5 * time.Second

	// DimmedTileAlpha is the opacity of seen but not currently visible tiles
	DimmedTileAlpha float32 = 0.45
)

// Animation names shared with the asset naming convention.
const (
	AnimationIdle   = "idle"
	AnimationWalk   = "walk"
	AnimationAttack = "attack"
	AnimationDamage = "damage"
	AnimationDeath  = "death"
)
