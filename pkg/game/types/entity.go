package types

// SpriteRef is the renderable data of an entity: where its sprite sheets
// live and how they should be played.
type SpriteRef struct {
	Folder        string  `json:"folder"`
	IdleAnimation string  `json:"idleAnimation"`
	Scale         float64 `json:"scale,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
}

// EntitySummary is the authoritative view of an entity as reported by the
// simulation. The client never mutates it; each sync replaces it wholesale.
type EntitySummary struct {
	UUID     string     `json:"uuid"`
	Name     string     `json:"name"`
	HP       int        `json:"hp"`
	MaxHP    int        `json:"maxHp"`
	Position Cell       `json:"position"`
	Senses   Senses     `json:"senses"`
	Sprite   *SpriteRef `json:"sprite,omitempty"`
}

// IsDead reports whether the entity has no hitpoints left.
func (e *EntitySummary) IsDead() bool {
	return e.MaxHP > 0 && e.HP <= 0
}

// Copy returns a deep copy of the summary.
func (e *EntitySummary) Copy() *EntitySummary {
	out := *e
	out.Senses = e.Senses.Copy()
	if e.Sprite != nil {
		sprite := *e.Sprite
		out.Sprite = &sprite
	}
	return &out
}
