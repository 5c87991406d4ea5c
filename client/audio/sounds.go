// Package audio plays synthesized combat sounds.
package audio

import (
	"math"
	"time"

	"github.com/cbodonnell/skirmish/client/combat"
	"github.com/gopxl/beep"
)

const sampleRate = beep.SampleRate(44100)

// Sound returns a finite streamer for the named combat effect, or nil when
// the effect has no sound.
func Sound(name string) beep.Streamer {
	switch name {
	case combat.EffectDamage:
		return beep.Take(sampleRate.N(180*time.Millisecond), thud(140, 14))
	case combat.EffectCritical:
		return beep.Seq(
			beep.Take(sampleRate.N(90*time.Millisecond), tone(660, 10)),
			beep.Take(sampleRate.N(160*time.Millisecond), tone(990, 12)),
		)
	case combat.EffectMiss:
		return beep.Take(sampleRate.N(200*time.Millisecond), whoosh(900, 300, time.Now().UnixNano()))
	default:
		return nil
	}
}

// tone is a sine with an exponential decay.
func tone(freq, decay float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			t := float64(pos) / float64(sampleRate)
			sample := 0.3 * math.Exp(-t*decay) * math.Sin(2*math.Pi*freq*t)
			samples[i][0] = sample
			samples[i][1] = sample
			pos++
		}
		return len(samples), true
	})
}

// thud is a low sine with a fast attack and a quick noise transient.
func thud(freq, decay float64) beep.Streamer {
	pos := 0
	seed := int64(7)
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			t := float64(pos) / float64(sampleRate)
			envelope := math.Min(t/0.005, 1) * math.Exp(-t*decay)

			seed = (seed*1103515245 + 12345) & 0x7fffffff
			noise := float64(seed)/float64(0x7fffffff)*2 - 1

			sample := envelope * (0.35*math.Sin(2*math.Pi*freq*t) + 0.1*noise*math.Exp(-t*60))
			samples[i][0] = sample
			samples[i][1] = sample
			pos++
		}
		return len(samples), true
	})
}

// whoosh is filtered noise under a falling sweep.
func whoosh(from, to float64, seed int64) beep.Streamer {
	pos := 0
	last := 0.0
	length := float64(sampleRate.N(200 * time.Millisecond))
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			t := float64(pos) / float64(sampleRate)
			progress := math.Min(float64(pos)/length, 1)
			freq := from + (to-from)*progress

			seed = (seed*1103515245 + 12345) & 0x7fffffff
			noise := float64(seed)/float64(0x7fffffff)*2 - 1
			last += (noise - last) * 0.2

			envelope := math.Sin(progress * math.Pi)
			sample := envelope * (0.2*last + 0.08*math.Sin(2*math.Pi*freq*t))
			samples[i][0] = sample
			samples[i][1] = sample
			pos++
		}
		return len(samples), true
	})
}
