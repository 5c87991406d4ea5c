package types

// MoveRequest is sent to the simulation to move an entity.
type MoveRequest struct {
	Target Cell `json:"target"`
}

// MoveResponse is returned for an accepted move. PathSenses holds the
// senses the mover will have on each intended step, keyed by "x,y".
type MoveResponse struct {
	Entity     EntitySummary     `json:"entity"`
	PathSenses map[string]Senses `json:"pathSenses,omitempty"`
}

// AttackRequest is sent to the simulation to resolve an attack.
type AttackRequest struct {
	TargetID string `json:"targetId"`
}

// AttackResponse carries the outcome of a resolved attack.
type AttackResponse struct {
	Hit      bool `json:"hit"`
	Damage   int  `json:"damage"`
	Critical bool `json:"critical"`
	TargetHP int  `json:"targetHp"`
}

// ActionEconomy is the per-turn budget of an entity.
type ActionEconomy struct {
	Actions   int `json:"actions"`
	Movement  int `json:"movement"`
	Reactions int `json:"reactions"`
}

// EntitiesResponse wraps the entity list endpoint.
type EntitiesResponse struct {
	Entities []EntitySummary `json:"entities"`
}

// ErrorResponse is the body of a failed simulation call.
type ErrorResponse struct {
	Error string `json:"error"`
}
