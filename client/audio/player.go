package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/skirmish/client/events"
	"github.com/cbodonnell/skirmish/client/scene"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Output plays finite streamers.
type Output interface {
	Play(s beep.Streamer)
}

type speakerOutput struct {
	mixer *beep.Mixer
}

func (o *speakerOutput) Play(s beep.Streamer) {
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

var (
	speakerOnce sync.Once
	speakerOut  *speakerOutput
	speakerErr  error
)

// OpenSpeaker initializes the audio device once and returns it as an Output.
// It fails on machines without an audio device.
func OpenSpeaker() (Output, error) {
	speakerOnce.Do(func() {
		if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
			speakerErr = fmt.Errorf("failed to initialize speaker: %v", err)
			return
		}
		speakerOut = &speakerOutput{mixer: &beep.Mixer{}}
		speaker.Play(speakerOut.mixer)
	})
	if speakerErr != nil {
		return nil, speakerErr
	}
	return speakerOut, nil
}

// Player plays a sound for every sound trigger on the bus. Without an
// output it stays silent.
type Player struct {
	bus    *events.Bus
	out    Output
	played map[string]int
	logger *log.Logger
}

type NewPlayerOptions struct {
	Bus    *events.Bus
	Output Output
	Logger *log.Logger
}

func NewPlayer(opts NewPlayerOptions) *Player {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		bus:    opts.Bus,
		out:    opts.Output,
		played: make(map[string]int),
		logger: logger.With("component", "audio"),
	}
}

func (p *Player) Init(s *scene.Scene) error {
	s.Track(p.bus.Subscribe(events.TopicSoundTrigger, p.onTrigger))
	return nil
}

func (p *Player) Destroy() error {
	return nil
}

func (p *Player) onTrigger(ev events.Event) {
	effect, ok := ev.Payload.(events.EffectPayload)
	if !ok {
		return
	}
	if p.out == nil {
		return
	}
	sound := Sound(effect.Name)
	if sound == nil {
		p.logger.Trace("No sound for effect %s", effect.Name)
		return
	}
	p.out.Play(sound)
	p.played[effect.Name]++
}

// Played returns how many times the named sound was played.
func (p *Player) Played(name string) int {
	return p.played[name]
}
