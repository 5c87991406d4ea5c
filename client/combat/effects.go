package combat

import (
	"fmt"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
)

// Effect names published on the effect and sound topics.
const (
	EffectDamage   = "damage"
	EffectCritical = "critical"
	EffectMiss     = "miss"
)

// strike tracks the two halves an effect waits for: the frame-timed impact
// and the simulation's verdict.
type strike struct {
	impact  bool
	payload *events.AttackPayload
	shown   bool
}

// EffectsHandler turns attack impacts into floating text and a damage
// reaction on the target. It only reacts to events and never decides
// combat outcomes.
type EffectsHandler struct {
	store   *store.Store
	bus     *events.Bus
	strikes map[string]*strike
	// reactions maps a target to the generation of its damage animation.
	reactions map[string]uint64
	subs      []*events.Subscription
}

func NewEffectsHandler(s *store.Store, bus *events.Bus) *EffectsHandler {
	h := &EffectsHandler{
		store:     s,
		bus:       bus,
		strikes:   make(map[string]*strike),
		reactions: make(map[string]uint64),
	}
	h.subs = append(h.subs,
		bus.Subscribe(events.TopicAttackStarted, h.onStarted),
		bus.Subscribe(events.TopicAttackImpact, h.onImpact),
		bus.Subscribe(events.TopicAnimationAdopted, h.onAdopted),
		bus.Subscribe(events.TopicAnimationRejected, h.onRejected),
		bus.Subscribe(events.TopicAnimationCompleted, h.onCompleted),
	)
	return h
}

// Close detaches the handler from the bus.
func (h *EffectsHandler) Close() {
	for _, s := range h.subs {
		s.Cancel()
	}
	h.subs = nil
}

func (h *EffectsHandler) onStarted(ev events.Event) {
	h.strikes[key(ev)] = &strike{}
}

func (h *EffectsHandler) onImpact(ev events.Event) {
	s, ok := h.strikes[key(ev)]
	if !ok {
		return
	}
	s.impact = true
	h.show(ev, s)
}

func (h *EffectsHandler) onAdopted(ev events.Event) {
	if ev.Kind != events.KindAttack {
		return
	}
	s, ok := h.strikes[key(ev)]
	if !ok {
		return
	}
	p, ok := ev.Payload.(events.AttackPayload)
	if !ok || !p.Resolved {
		return
	}
	s.payload = &p
	h.show(ev, s)
}

func (h *EffectsHandler) onRejected(ev events.Event) {
	if ev.Kind == events.KindAttack {
		delete(h.strikes, key(ev))
	}
}

// show fires once both the impact and the verdict are known.
func (h *EffectsHandler) show(ev events.Event, s *strike) {
	if s.shown || !s.impact || s.payload == nil {
		return
	}
	s.shown = true
	delete(h.strikes, key(ev))

	p := s.payload
	target, ok := h.store.Entity(p.TargetID)
	if !ok {
		return
	}

	name, text := EffectMiss, "miss"
	if p.Hit {
		name, text = EffectDamage, fmt.Sprintf("-%d", p.Damage)
		if p.Critical {
			name, text = EffectCritical, fmt.Sprintf("-%d!", p.Damage)
		}
	}
	cell := target.Position
	if m, ok := h.store.Sprite(p.TargetID); ok {
		cell = m.VisualPosition.Cell()
	}
	effect := events.EffectPayload{Name: name, Cell: cell, TargetID: p.TargetID, Text: text}
	h.bus.Publish(events.Event{Topic: events.TopicEffectTrigger, EntityID: p.TargetID, Kind: events.KindEffect, Status: events.StatusPlaying, Payload: effect})
	h.bus.Publish(events.Event{Topic: events.TopicSoundTrigger, EntityID: p.TargetID, Kind: events.KindEffect, Status: events.StatusPlaying, Payload: effect})

	if p.Hit {
		h.react(p.TargetID)
	}
}

// react plays the damage animation on an idle target.
func (h *EffectsHandler) react(targetID string) {
	m, ok := h.store.Sprite(targetID)
	if !ok || m.MovementState != store.MovementIdle || m.CurrentAnimation != m.IdleAnimation {
		return
	}
	if _, busy := h.store.Attack(targetID); busy {
		return
	}
	h.reactions[targetID] = m.SetAnimation(constants.AnimationDamage)
	h.store.Notify(store.TopicSprites)
}

func (h *EffectsHandler) onCompleted(ev events.Event) {
	if ev.Kind != events.KindDamage {
		return
	}
	gen, ok := h.reactions[ev.EntityID]
	if !ok || gen != ev.Generation {
		return
	}
	delete(h.reactions, ev.EntityID)
	m, ok := h.store.Sprite(ev.EntityID)
	if !ok || m.Generation != gen {
		return
	}
	m.SetAnimation(m.IdleAnimation)
	h.store.Notify(store.TopicSprites)
}

func key(ev events.Event) string {
	return fmt.Sprintf("%s#%d", ev.EntityID, ev.Generation)
}
