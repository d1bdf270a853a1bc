package ui

import (
	"sync"

	"snake-torus/game"
)

const maxScores = 200 // scores kept for the performance graph

// History remembers the final score of recent games for the graph.
type History struct {
	mu     sync.RWMutex
	scores []int
	sum    int
	games  int
}

func NewHistory() *History {
	return &History{}
}

// Listen is a game.Listener.
func (h *History) Listen(ev game.Event) {
	if ev.Type != game.EventReset {
		return
	}
	h.Add(ev.FinalScore)
}

func (h *History) Add(score int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scores = append(h.scores, score)
	if len(h.scores) > maxScores {
		h.scores = h.scores[len(h.scores)-maxScores:]
	}
	h.sum += score
	h.games++
}

// Scores returns a copy of the recent scores, oldest first.
func (h *History) Scores() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]int(nil), h.scores...)
}

// Average is over every game this session, not just the kept window.
func (h *History) Average() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.games == 0 {
		return 0
	}
	return float64(h.sum) / float64(h.games)
}

func (h *History) Games() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.games
}
