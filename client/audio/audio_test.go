package audio

import (
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain streams s to exhaustion and returns the sample count and peak.
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			for _, v := range frame {
				if v < 0 {
					v = -v
				}
				if v > peak {
					peak = v
				}
			}
		}
		total += n
		if !ok || n == 0 {
			return total, peak
		}
	}
}

func TestSound(t *testing.T) {
	tests := []struct {
		name   string
		effect string
		length time.Duration
	}{
		{name: "damage", effect: combat.EffectDamage, length: 180 * time.Millisecond},
		{name: "critical", effect: combat.EffectCritical, length: 250 * time.Millisecond},
		{name: "miss", effect: combat.EffectMiss, length: 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Sound(tt.effect)
			require.NotNil(t, s)
			n, peak := drain(s)
			assert.InDelta(t, sampleRate.N(tt.length), n, 2)
			assert.Greater(t, peak, 0.0)
			assert.LessOrEqual(t, peak, 1.0)
		})
	}
}

func TestSound_Unknown(t *testing.T) {
	assert.Nil(t, Sound("fanfare"))
}

type recordingOutput struct {
	streams []beep.Streamer
}

func (o *recordingOutput) Play(s beep.Streamer) {
	o.streams = append(o.streams, s)
}

func trigger(bus *events.Bus, name string) {
	bus.Publish(events.Event{
		Topic:   events.TopicSoundTrigger,
		Kind:    events.KindEffect,
		Payload: events.EffectPayload{Name: name},
	})
}

func TestPlayer_PlaysTriggers(t *testing.T) {
	bus := events.NewBus(events.NewBusOptions{})
	out := &recordingOutput{}
	p := NewPlayer(NewPlayerOptions{Bus: bus, Output: out})
	s := scene.New(scene.NewSceneOptions{})
	require.NoError(t, s.AddComponent(p))

	trigger(bus, combat.EffectDamage)
	trigger(bus, combat.EffectMiss)
	trigger(bus, "fanfare")
	bus.Publish(events.Event{Topic: events.TopicSoundTrigger, Payload: "not an effect"})

	assert.Len(t, out.streams, 2)
	assert.Equal(t, 1, p.Played(combat.EffectDamage))
	assert.Equal(t, 1, p.Played(combat.EffectMiss))
	assert.Equal(t, 0, p.Played("fanfare"))

	s.Teardown()
	trigger(bus, combat.EffectDamage)
	assert.Len(t, out.streams, 2)
}

func TestPlayer_MutedWithoutOutput(t *testing.T) {
	bus := events.NewBus(events.NewBusOptions{})
	p := NewPlayer(NewPlayerOptions{Bus: bus})
	s := scene.New(scene.NewSceneOptions{})
	require.NoError(t, s.AddComponent(p))

	assert.NotPanics(t, func() { trigger(bus, combat.EffectCritical) })
	assert.Equal(t, 0, p.Played(combat.EffectCritical))
}
