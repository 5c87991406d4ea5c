package store

import (
	"sort"
	"time"

	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
)

// Topic names a store change notification.
type Topic uint8

const (
	TopicGrid Topic = iota
	TopicEntities
	TopicSprites
	TopicView
	TopicObserver
)

// Store is the shared world state. It is owned by the render loop and is
// not safe for concurrent use; network goroutines hand results to the
// loop through a queue instead of touching it.
type Store struct {
	grid      *types.Grid
	entities  map[string]*types.EntitySummary
	sprites   map[string]*SpriteMapping
	movements map[string]*MovementAnimation
	attacks   map[string]*AttackAnimation
	view      ViewState
	observer  string
	// replacedAt is when an entity was last replaced outside a snapshot.
	// Snapshots fetched before that instant do not overwrite it.
	replacedAt map[string]time.Time

	subs   map[Topic][]*Subscription
	nextID uint64
}

// Subscription is a handle to a store change listener.
type Subscription struct {
	id        uint64
	topic     Topic
	fn        func()
	cancelled bool
	store     *Store
}

// Cancel stops further notifications.
func (s *Subscription) Cancel() {
	if s == nil || s.cancelled {
		return
	}
	s.cancelled = true
	subs := s.store.subs[s.topic]
	for i, sub := range subs {
		if sub == s {
			s.store.subs[s.topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func New() *Store {
	return &Store{
		grid:       types.NewGrid(0, 0),
		entities:   make(map[string]*types.EntitySummary),
		sprites:    make(map[string]*SpriteMapping),
		movements:  make(map[string]*MovementAnimation),
		attacks:    make(map[string]*AttackAnimation),
		view:       ViewState{TileSize: 1},
		replacedAt: make(map[string]time.Time),
		subs:       make(map[Topic][]*Subscription),
	}
}

// Subscribe registers fn to run after every change to topic.
func (s *Store) Subscribe(topic Topic, fn func()) *Subscription {
	s.nextID++
	sub := &Subscription{id: s.nextID, topic: topic, fn: fn, store: s}
	s.subs[topic] = append(s.subs[topic], sub)
	return sub
}

// Notify runs every listener of topic.
func (s *Store) Notify(topic Topic) {
	subs := append([]*Subscription(nil), s.subs[topic]...)
	for _, sub := range subs {
		if !sub.cancelled {
			sub.fn()
		}
	}
}

func (s *Store) Grid() *types.Grid {
	return s.grid
}

// SetGrid replaces the terrain.
func (s *Store) SetGrid(g *types.Grid) {
	if g == nil {
		return
	}
	s.grid = g
	s.Notify(TopicGrid)
}

// SetTile applies a single tile edit.
func (s *Store) SetTile(t *types.Tile) {
	s.grid.SetTile(t)
	s.Notify(TopicGrid)
}

// RemoveTile applies a single tile deletion.
func (s *Store) RemoveTile(c types.Cell) {
	s.grid.RemoveTile(c)
	s.Notify(TopicGrid)
}

func (s *Store) Entity(id string) (*types.EntitySummary, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// EntityIDs returns every entity id in sorted order.
func (s *Store) EntityIDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EntityAt returns the entity whose authoritative position is c.
func (s *Store) EntityAt(c types.Cell) (*types.EntitySummary, bool) {
	for _, id := range s.EntityIDs() {
		e := s.entities[id]
		if e.Position == c {
			return e, true
		}
	}
	return nil, false
}

func (s *Store) Sprite(id string) (*SpriteMapping, bool) {
	m, ok := s.sprites[id]
	return m, ok
}

// SpriteIDs returns the ids of every entity with a sprite mapping, sorted.
func (s *Store) SpriteIDs() []string {
	ids := make([]string, 0, len(s.sprites))
	for id := range s.sprites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Movement(id string) (*MovementAnimation, bool) {
	m, ok := s.movements[id]
	return m, ok
}

func (s *Store) SetMovement(m *MovementAnimation) {
	s.movements[m.EntityID] = m
}

func (s *Store) ClearMovement(id string) {
	delete(s.movements, id)
}

// MovementIDs returns the ids of entities with an active movement, sorted.
func (s *Store) MovementIDs() []string {
	ids := make([]string, 0, len(s.movements))
	for id := range s.movements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Attack(id string) (*AttackAnimation, bool) {
	a, ok := s.attacks[id]
	return a, ok
}

func (s *Store) SetAttack(a *AttackAnimation) {
	s.attacks[a.AttackerID] = a
}

func (s *Store) ClearAttack(id string) {
	delete(s.attacks, id)
}

func (s *Store) View() ViewState {
	return s.view
}

// UpdateView applies fn to the view state and notifies listeners.
func (s *Store) UpdateView(fn func(v *ViewState)) {
	before := s.view
	fn(&s.view)
	if before != s.view {
		s.Notify(TopicView)
	}
}

// Observer returns the id of the entity whose senses gate rendering.
func (s *Store) Observer() string {
	return s.observer
}

func (s *Store) SetObserver(id string) {
	if s.observer == id {
		return
	}
	s.observer = id
	s.Notify(TopicObserver)
}

// ReplaceEntity swaps a single entity summary, keeping fog monotonic.
func (s *Store) ReplaceEntity(e types.EntitySummary) {
	s.replaceEntity(e)
	s.Notify(TopicEntities)
	s.Notify(TopicSprites)
}

// ReplaceEntityAt swaps a single entity summary known to be current at
// the given instant, typically a move response.
func (s *Store) ReplaceEntityAt(e types.EntitySummary, at time.Time) {
	s.replacedAt[e.UUID] = at
	s.ReplaceEntity(e)
}

// ApplyEntities replaces the entity set atomically with a polled snapshot.
// Entities missing from the snapshot are removed along with their visual
// state. Controller-owned mapping fields are left alone while an entity
// is moving or attacking.
func (s *Store) ApplyEntities(list []types.EntitySummary) {
	s.applyEntities(list, nil)
}

// ApplySnapshot is ApplyEntities for a snapshot fetched at fetchedAt.
// Entities replaced after that instant keep their newer summary.
func (s *Store) ApplySnapshot(list []types.EntitySummary, fetchedAt time.Time) {
	s.applyEntities(list, &fetchedAt)
}

func (s *Store) applyEntities(list []types.EntitySummary, fetchedAt *time.Time) {
	present := make(map[string]struct{}, len(list))
	for _, e := range list {
		present[e.UUID] = struct{}{}
		if at, ok := s.replacedAt[e.UUID]; ok && fetchedAt != nil && fetchedAt.Before(at) {
			log.Debug("Keeping entity %s replaced after the snapshot was fetched", e.UUID)
			continue
		}
		delete(s.replacedAt, e.UUID)
		s.replaceEntity(e)
	}
	for id := range s.entities {
		if _, ok := present[id]; ok {
			continue
		}
		log.Debug("Removing entity %s no longer reported by the simulation", id)
		delete(s.entities, id)
		delete(s.sprites, id)
		delete(s.movements, id)
		delete(s.attacks, id)
		delete(s.replacedAt, id)
	}
	if _, ok := s.entities[s.observer]; !ok && s.observer != "" {
		s.observer = ""
		s.Notify(TopicObserver)
	}
	s.Notify(TopicEntities)
	s.Notify(TopicSprites)
}

func (s *Store) replaceEntity(e types.EntitySummary) {
	next := e.Copy()
	if prev, ok := s.entities[e.UUID]; ok {
		next.Senses = next.Senses.MergeSeen(prev.Senses)
	} else {
		next.Senses = next.Senses.MergeSeen(types.Senses{})
	}
	s.entities[e.UUID] = next
	s.reconcileMapping(next)
}

func (s *Store) reconcileMapping(e *types.EntitySummary) {
	m, ok := s.sprites[e.UUID]
	if e.Sprite == nil {
		if ok {
			delete(s.sprites, e.UUID)
		}
		return
	}

	scale := e.Sprite.Scale
	if scale <= 0 {
		scale = constants.DefaultSpriteScale
	}
	duration := e.Sprite.Duration
	if duration <= 0 {
		duration = constants.DefaultAnimationDuration
	}
	idle := e.Sprite.IdleAnimation
	if idle == "" {
		idle = constants.AnimationIdle
	}

	if !ok {
		s.sprites[e.UUID] = &SpriteMapping{
			EntityID:         e.UUID,
			SpriteFolder:     e.Sprite.Folder,
			IdleAnimation:    idle,
			CurrentAnimation: idle,
			CurrentDirection: types.DefaultDirection,
			MovementState:    MovementIdle,
			VisualPosition:   VecOf(e.Position),
			IsPositionSynced: true,
			Scale:            scale,
			Duration:         duration,
			Generation:       1,
		}
		return
	}

	m.SpriteFolder = e.Sprite.Folder
	m.Scale = scale
	m.Duration = duration
	if s.controllerOwned(e.UUID, m) {
		m.IdleAnimation = idle
		return
	}
	if m.CurrentAnimation == m.IdleAnimation && m.IdleAnimation != idle {
		m.SetAnimation(idle)
	}
	m.IdleAnimation = idle
	m.VisualPosition = VecOf(e.Position)
}

// controllerOwned reports whether an animation controller currently owns
// the entity's visual fields.
func (s *Store) controllerOwned(id string, m *SpriteMapping) bool {
	if m.MovementState != MovementIdle || !m.IsPositionSynced {
		return true
	}
	if _, ok := s.movements[id]; ok {
		return true
	}
	if _, ok := s.attacks[id]; ok {
		return true
	}
	return m.CurrentAnimation != m.IdleAnimation
}
