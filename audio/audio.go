package audio

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"snake-torus/game"
)

const sampleRate = beep.SampleRate(44100)

// Tone is a sine wave at freq with a short linear fade in and out.
func Tone(freq float64, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	fade := rate.N(5 * time.Millisecond)
	pos := 0
	return beep.Take(total, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			gain := 0.3
			if pos < fade {
				gain *= float64(pos) / float64(fade)
			} else if rem := total - pos; rem < fade {
				gain *= float64(rem) / float64(fade)
			}
			v := gain * math.Sin(2*math.Pi*freq*float64(pos)/float64(rate))
			samples[i] = [2]float64{v, v}
			pos++
		}
		return len(samples), true
	}))
}

// EatSound is a short rising pair of notes.
func EatSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		Tone(660, 60*time.Millisecond, rate),
		Tone(990, 80*time.Millisecond, rate),
	)
}

// ResetSound is a low falling pair of notes.
func ResetSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		Tone(220, 120*time.Millisecond, rate),
		Tone(147, 200*time.Millisecond, rate),
	)
}

// Player plays game cues through the speaker.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	rate        beep.SampleRate
	initialized bool
	logger      *log.Logger

	// play hands a finished cue to the output. Replaced in tests.
	play func(beep.Streamer)
}

func NewPlayer(logger *log.Logger) *Player {
	if logger == nil {
		logger = log.Default()
	}
	p := &Player{mixer: &beep.Mixer{}, rate: sampleRate, logger: logger}
	p.play = p.enqueue
	return p
}

// Initialize opens the speaker. Playing before Initialize is a no-op.
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences everything still queued.
func (p *Player) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

func (p *Player) enqueue(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Listen is a game.Listener.
func (p *Player) Listen(ev game.Event) {
	switch ev.Type {
	case game.EventAte:
		p.play(EatSound(p.rate))
	case game.EventReset:
		p.play(ResetSound(p.rate))
	}
}
