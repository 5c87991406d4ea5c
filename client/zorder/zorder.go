// Package zorder holds temporary draw-order overrides for entities.
package zorder

import (
	"github.com/cbodonnell/skirmish/client/events"
)

// ElevatedZIndex is the override applied by Elevate.
const ElevatedZIndex = 100

// Manager is a sparse map of entity id to z-index override. Entities without
// an override are ordered by screen depth.
type Manager struct {
	overrides map[string]int
	container *SortedContainer
	bus       *events.Bus

	subscription *events.Subscription
}

type NewManagerOptions struct {
	// Container is the entity container re-sorted on override changes.
	Container *SortedContainer
	// Bus, when set, receives zorder:change events and is listened to for
	// zorder:request events from other components.
	Bus *events.Bus
}

func NewManager(opts NewManagerOptions) *Manager {
	m := &Manager{
		overrides: make(map[string]int),
		container: opts.Container,
		bus:       opts.Bus,
	}
	if m.container != nil {
		m.container.setZIndexSource(m.Override)
	}
	if m.bus != nil {
		m.subscription = m.bus.Subscribe(events.TopicZOrderRequest, m.onRequest)
	}
	return m
}

// Close stops listening for override requests.
func (m *Manager) Close() {
	if m.subscription != nil {
		m.subscription.Cancel()
	}
}

func (m *Manager) onRequest(ev events.Event) {
	if ev.EntityID == "" {
		return
	}
	p, ok := ev.Payload.(events.ZOrderPayload)
	if !ok {
		return
	}
	if p.Clear {
		m.Clear(ev.EntityID)
		return
	}
	m.Set(ev.EntityID, p.ZIndex)
}

// Override returns the override for id, if any.
func (m *Manager) Override(id string) (int, bool) {
	z, ok := m.overrides[id]
	return z, ok
}

// Elevate raises id above entities without an override.
func (m *Manager) Elevate(id string) {
	m.Set(id, ElevatedZIndex)
}

// Set installs an explicit override.
func (m *Manager) Set(id string, z int) {
	if cur, ok := m.overrides[id]; ok && cur == z {
		return
	}
	m.overrides[id] = z
	m.resort()
	m.publish(id, z, false)
}

// Clear removes the override for id and re-sorts the container once.
func (m *Manager) Clear(id string) {
	if _, ok := m.overrides[id]; !ok {
		return
	}
	delete(m.overrides, id)
	m.resort()
	m.publish(id, 0, true)
}

// Len returns the number of active overrides.
func (m *Manager) Len() int {
	return len(m.overrides)
}

func (m *Manager) resort() {
	if m.container != nil {
		m.container.Sort()
	}
}

func (m *Manager) publish(id string, z int, clear bool) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{
		Topic:    events.TopicZOrderChange,
		EntityID: id,
		Status:   events.StatusCompleted,
		Payload:  events.ZOrderPayload{ZIndex: z, Clear: clear},
	})
}
