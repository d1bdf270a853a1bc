package audio

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"snake-torus/game"
)

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestToneLengthAndRange(t *testing.T) {
	rate := beep.SampleRate(44100)
	s := Tone(440, 100*time.Millisecond, rate)

	buf := make([][2]float64, 256)
	n, ok := s.Stream(buf)
	if !ok || n != 256 {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want silence at the fade start", buf[0][0])
	}
	for i := 0; i < n; i++ {
		if buf[i][0] < -1 || buf[i][0] > 1 || buf[i][0] != buf[i][1] {
			t.Fatalf("sample %d = %v", i, buf[i])
		}
	}

	if got, want := n+drain(s), rate.N(100*time.Millisecond); got != want {
		t.Errorf("tone length = %d samples, want %d", got, want)
	}
}

func TestCueLengths(t *testing.T) {
	rate := beep.SampleRate(44100)
	if got, want := drain(EatSound(rate)), rate.N(60*time.Millisecond)+rate.N(80*time.Millisecond); got != want {
		t.Errorf("eat cue = %d samples, want %d", got, want)
	}
	if got, want := drain(ResetSound(rate)), rate.N(120*time.Millisecond)+rate.N(200*time.Millisecond); got != want {
		t.Errorf("reset cue = %d samples, want %d", got, want)
	}
}

func TestListenPlaysCues(t *testing.T) {
	p := NewPlayer(log.New(io.Discard, "", 0))
	var played []int
	p.play = func(s beep.Streamer) { played = append(played, drain(s)) }

	p.Listen(game.Event{Type: game.EventMoved})
	p.Listen(game.Event{Type: game.EventAte})
	p.Listen(game.Event{Type: game.EventFoodSpawned})
	p.Listen(game.Event{Type: game.EventReset})

	if len(played) != 2 {
		t.Fatalf("played %d cues, want 2", len(played))
	}
	if played[0] >= played[1] {
		t.Errorf("eat cue (%d) should be shorter than reset cue (%d)", played[0], played[1])
	}
}

func TestPlayBeforeInitializeIsSilent(t *testing.T) {
	p := NewPlayer(log.New(io.Discard, "", 0))
	p.Listen(game.Event{Type: game.EventAte})
	if p.mixer.Len() != 0 {
		t.Errorf("mixer has %d streamers before Initialize", p.mixer.Len())
	}
	p.Cleanup()
}
