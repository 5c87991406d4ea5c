package sprites

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/store"
	"github.com/cbodonnell/skirmish/pkg/game/constants"
	"github.com/cbodonnell/skirmish/pkg/game/types"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is the drawable state of one entity.
type Sprite struct {
	EntityID   string
	key        Key
	direction  types.Direction
	generation uint64
	scale      float64
	anim       *Animation
	// frames is nil until the key has loaded.
	frames Frames
}

func (s *Sprite) Key() Key {
	return s.key
}

func (s *Sprite) Direction() types.Direction {
	return s.direction
}

func (s *Sprite) Scale() float64 {
	return s.scale
}

func (s *Sprite) Animation() *Animation {
	return s.anim
}

// Image returns the current frame, or nil when it is not available.
func (s *Sprite) Image() *ebiten.Image {
	if s.anim == nil {
		return nil
	}
	return s.anim.CurrentImage()
}

// Manager turns the store's sprite mappings into playing animations.
type Manager struct {
	store  *store.Store
	loader *Loader
	bus    *events.Bus
	logger *log.Logger

	sprites map[string]*Sprite
	hashes  map[string]uint64
	// missing records keys already reported as unavailable.
	missing map[string]bool
}

type NewManagerOptions struct {
	Store  *store.Store
	Loader *Loader
	Bus    *events.Bus
	Logger *log.Logger
}

func NewManager(opts NewManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		store:   opts.Store,
		loader:  opts.Loader,
		bus:     opts.Bus,
		logger:  logger.With("component", "sprites"),
		sprites: make(map[string]*Sprite),
		hashes:  make(map[string]uint64),
		missing: make(map[string]bool),
	}
}

// Sprite returns the sprite for an entity.
func (m *Manager) Sprite(id string) (*Sprite, bool) {
	s, ok := m.sprites[id]
	return s, ok
}

// Len returns the number of sprites.
func (m *Manager) Len() int {
	return len(m.sprites)
}

// Sync reconciles sprites with the store's mappings. Mappings whose hash is
// unchanged are skipped. It returns the number of sprites touched.
func (m *Manager) Sync() int {
	ids := m.store.SpriteIDs()
	present := make(map[string]struct{}, len(ids))
	changed := 0
	for _, id := range ids {
		present[id] = struct{}{}
		mapping, ok := m.store.Sprite(id)
		if !ok {
			continue
		}
		h := mappingHash(mapping)
		if prev, ok := m.hashes[id]; ok && prev == h {
			continue
		}
		m.hashes[id] = h
		m.apply(mapping)
		changed++
	}
	for id := range m.sprites {
		if _, ok := present[id]; !ok {
			m.Remove(id)
			changed++
		}
	}
	return changed
}

func (m *Manager) apply(mapping *store.SpriteMapping) {
	key := Key{Folder: mapping.SpriteFolder, Animation: mapping.CurrentAnimation}
	scale := mapping.Scale
	if scale <= 0 {
		scale = constants.DefaultSpriteScale
	}

	s, ok := m.sprites[mapping.EntityID]
	if !ok {
		s = &Sprite{EntityID: mapping.EntityID}
		m.sprites[mapping.EntityID] = s
		m.start(s, mapping, key, 0)
		s.scale = scale
		return
	}
	s.scale = scale

	switch {
	case s.key == key && s.generation == mapping.Generation && s.direction == mapping.CurrentDirection:
		// cosmetic only
		s.anim.SetDuration(mapping.Duration)
	case s.key == key && s.generation == mapping.Generation:
		// direction only, keep the frame for continuity
		prev := s.anim
		m.start(s, mapping, key, prev.FrameIndex())
		s.anim.Resume(prev)
	default:
		m.start(s, mapping, key, 0)
	}
}

func (m *Manager) start(s *Sprite, mapping *store.SpriteMapping, key Key, startFrame int) {
	if s.key != key {
		s.frames = nil
	}
	s.key = key
	s.direction = mapping.CurrentDirection
	s.generation = mapping.Generation

	frameCount := 0
	if s.anim != nil {
		frameCount = s.anim.FrameCount()
	}
	if s.frames == nil {
		if f, ok := m.loader.Get(key); ok {
			s.frames = f
		}
	}
	frames := m.framesFor(s)
	if len(frames) > 0 {
		frameCount = len(frames)
	}
	s.anim = NewAnimation(NewAnimationOptions{
		Frames:     frames,
		Loop:       Loops(key.Animation),
		Duration:   mapping.Duration,
		FrameCount: frameCount,
		StartFrame: startFrame,
	})

	if s.frames == nil {
		m.request(s.EntityID, key)
	}
}

func (m *Manager) request(id string, key Key) {
	if m.loader.Pending(key) {
		// already requested; the first requester refreshes every sprite using it
		return
	}
	m.loader.Request(key, func(f Frames, err error) {
		if err != nil {
			m.reportMissing(key.String())
			return
		}
		for _, s := range m.sprites {
			if s.key != key || s.frames != nil {
				continue
			}
			s.frames = f
			s.anim.SetFrames(m.framesFor(s))
		}
	})
}

func (m *Manager) framesFor(s *Sprite) []*ebiten.Image {
	if s.frames == nil {
		return nil
	}
	frames, ok := s.frames[s.direction]
	if !ok || len(frames) == 0 {
		m.reportMissing(s.key.String() + "/" + s.direction.String())
		return nil
	}
	return frames
}

func (m *Manager) reportMissing(what string) {
	if m.missing[what] {
		return
	}
	m.missing[what] = true
	m.logger.Warn("No frames for %s, skipping draw", what)
}

// Remove drops the sprite and its hash so a later mapping starts fresh.
func (m *Manager) Remove(id string) {
	delete(m.sprites, id)
	delete(m.hashes, id)
}

// Update advances every sprite and publishes impact and completion events.
// One-shot animations also publish progress whenever their frame advances.
func (m *Manager) Update(dt float64) {
	ids := make([]string, 0, len(m.sprites))
	for id := range m.sprites {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s, ok := m.sprites[id]
		if !ok || s.anim == nil {
			continue
		}
		frame := s.anim.FrameIndex()
		impact, completed := s.anim.Update(dt)
		if impact && s.key.Animation == constants.AnimationAttack {
			m.publish(events.TopicAttackImpact, s, events.StatusPlaying)
		}
		switch {
		case completed:
			m.publish(events.TopicAnimationCompleted, s, events.StatusCompleted)
		case !s.anim.Loop() && s.anim.FrameIndex() != frame:
			m.publish(events.TopicAnimationProgress, s, events.StatusPlaying)
		}
	}
}

func (m *Manager) publish(topic events.Topic, s *Sprite, status events.Status) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.Event{
		Topic:      topic,
		EntityID:   s.EntityID,
		Kind:       kindOf(s.key.Animation),
		Status:     status,
		Progress:   s.anim.Progress(),
		Generation: s.generation,
		Payload: events.SpritePayload{
			Animation: s.key.Animation,
			Direction: s.direction,
		},
	})
}

func kindOf(animation string) events.Kind {
	switch animation {
	case constants.AnimationAttack:
		return events.KindAttack
	case constants.AnimationDamage, constants.AnimationDeath:
		return events.KindDamage
	case constants.AnimationWalk:
		return events.KindMovement
	default:
		return events.KindSprite
	}
}

func mappingHash(m *store.SpriteMapping) uint64 {
	h := fnv.New64a()
	h.Write([]byte(m.SpriteFolder))
	h.Write([]byte{0})
	h.Write([]byte(m.CurrentAnimation))
	h.Write([]byte{0, byte(m.CurrentDirection)})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], m.Generation)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.Scale))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.Duration))
	h.Write(buf[:])
	return h.Sum64()
}
