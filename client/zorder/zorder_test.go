package zorder

import (
	"testing"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testChild struct {
	id    string
	depth float64
}

func (c *testChild) ID() string      { return c.id }
func (c *testChild) Depth() float64 { return c.depth }

func ids(children []Child) []string {
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, c.ID())
	}
	return out
}

func TestSortedContainer_DefaultDepthOrder(t *testing.T) {
	c := NewSortedContainer()
	require.NoError(t, c.AddChild(&testChild{id: "far", depth: 9}))
	require.NoError(t, c.AddChild(&testChild{id: "near", depth: 1}))
	require.NoError(t, c.AddChild(&testChild{id: "b", depth: 5}))
	require.NoError(t, c.AddChild(&testChild{id: "a", depth: 5}))

	assert.Equal(t, []string{"near", "a", "b", "far"}, ids(c.GetChildren()))
	assert.Error(t, c.AddChild(&testChild{id: "far"}))
}

func TestSortedContainer_RemoveChild(t *testing.T) {
	c := NewSortedContainer()
	require.NoError(t, c.AddChild(&testChild{id: "a", depth: 1}))
	require.NoError(t, c.AddChild(&testChild{id: "b", depth: 2}))

	require.NoError(t, c.RemoveChild("a"))
	assert.Equal(t, []string{"b"}, ids(c.GetChildren()))
	assert.Nil(t, c.GetChild("a"))
	assert.Error(t, c.RemoveChild("a"))
}

func TestSortedContainer_SortIfNeeded(t *testing.T) {
	c := NewSortedContainer()
	a := &testChild{id: "a", depth: 1}
	b := &testChild{id: "b", depth: 2}
	require.NoError(t, c.AddChild(a))
	require.NoError(t, c.AddChild(b))

	assert.False(t, c.SortIfNeeded())
	a.depth = 3
	assert.True(t, c.SortIfNeeded())
	assert.Equal(t, []string{"b", "a"}, ids(c.GetChildren()))
	assert.Equal(t, 1, c.Resorts())
}

func TestManager_ElevateAndClear(t *testing.T) {
	c := NewSortedContainer()
	bus := events.NewBus(events.NewBusOptions{})
	var changes []events.ZOrderPayload
	bus.Subscribe(events.TopicZOrderChange, func(ev events.Event) {
		changes = append(changes, ev.Payload.(events.ZOrderPayload))
	})
	m := NewManager(NewManagerOptions{Container: c, Bus: bus})

	require.NoError(t, c.AddChild(&testChild{id: "attacker", depth: 2}))
	require.NoError(t, c.AddChild(&testChild{id: "target", depth: 5}))
	assert.Equal(t, []string{"attacker", "target"}, ids(c.GetChildren()))

	m.Elevate("attacker")
	assert.Equal(t, []string{"target", "attacker"}, ids(c.GetChildren()))
	z, ok := m.Override("attacker")
	assert.True(t, ok)
	assert.Equal(t, ElevatedZIndex, z)

	resorts := c.Resorts()
	m.Clear("attacker")
	assert.Equal(t, resorts+1, c.Resorts())
	assert.Equal(t, []string{"attacker", "target"}, ids(c.GetChildren()))
	assert.Equal(t, 0, m.Len())

	// clearing again is a no-op
	m.Clear("attacker")
	assert.Equal(t, resorts+1, c.Resorts())

	require.Len(t, changes, 2)
	assert.False(t, changes[0].Clear)
	assert.True(t, changes[1].Clear)
}

func TestManager_OverridesOrderAmongThemselves(t *testing.T) {
	c := NewSortedContainer()
	m := NewManager(NewManagerOptions{Container: c})
	require.NoError(t, c.AddChild(&testChild{id: "a", depth: 9}))
	require.NoError(t, c.AddChild(&testChild{id: "b", depth: 1}))
	require.NoError(t, c.AddChild(&testChild{id: "c", depth: 5}))

	m.Set("a", 10)
	m.Set("b", 20)
	assert.Equal(t, []string{"c", "a", "b"}, ids(c.GetChildren()))
}

func TestManager_HandlesRequests(t *testing.T) {
	c := NewSortedContainer()
	bus := events.NewBus(events.NewBusOptions{})
	var changes []events.Event
	bus.Subscribe(events.TopicZOrderChange, func(ev events.Event) { changes = append(changes, ev) })
	m := NewManager(NewManagerOptions{Container: c, Bus: bus})
	require.NoError(t, c.AddChild(&testChild{id: "a", depth: 2}))
	require.NoError(t, c.AddChild(&testChild{id: "b", depth: 5}))

	tests := []struct {
		name      string
		request   events.Event
		wantOrder []string
		wantZ     int
		wantSet   bool
	}{
		{
			name:      "set raises the entity",
			request:   events.Event{Topic: events.TopicZOrderRequest, EntityID: "a", Payload: events.ZOrderPayload{ZIndex: 7}},
			wantOrder: []string{"b", "a"},
			wantZ:     7,
			wantSet:   true,
		},
		{
			name:      "payload of another type is ignored",
			request:   events.Event{Topic: events.TopicZOrderRequest, EntityID: "a", Payload: "raise"},
			wantOrder: []string{"b", "a"},
			wantZ:     7,
			wantSet:   true,
		},
		{
			name:      "clear restores depth order",
			request:   events.Event{Topic: events.TopicZOrderRequest, EntityID: "a", Payload: events.ZOrderPayload{Clear: true}},
			wantOrder: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus.Publish(tt.request)
			assert.Equal(t, tt.wantOrder, ids(c.GetChildren()))
			z, ok := m.Override("a")
			assert.Equal(t, tt.wantSet, ok)
			assert.Equal(t, tt.wantZ, z)
		})
	}
	require.Len(t, changes, 2)
	assert.Equal(t, "a", changes[0].EntityID)
	assert.True(t, changes[1].Payload.(events.ZOrderPayload).Clear)

	m.Close()
	bus.Publish(events.Event{Topic: events.TopicZOrderRequest, EntityID: "b", Payload: events.ZOrderPayload{ZIndex: 3}})
	_, ok := m.Override("b")
	assert.False(t, ok)
}
