package ai

import (
	"context"
	"log"
	"sync"

	"snake-torus/game"
	"snake-torus/input"
)

// Autopilot plays the game. It learns from the tick events it listens to
// and feeds its decisions back as key presses.
type Autopilot struct {
	q      *QLearning
	logger *log.Logger
	keys   chan input.Key

	mu          sync.Mutex
	last        *State
	lastAction  Action
	gamesPlayed int
}

func NewAutopilot(q *QLearning, logger *log.Logger) *Autopilot {
	if logger == nil {
		logger = log.Default()
	}
	return &Autopilot{q: q, logger: logger, keys: make(chan input.Key, 1)}
}

func (a *Autopilot) QLearning() *QLearning {
	return a.q
}

func (a *Autopilot) GamesPlayed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gamesPlayed
}

// Listen is a game.Listener. Only tick outcomes drive learning.
func (a *Autopilot) Listen(ev game.Event) {
	switch ev.Type {
	case game.EventMoved, game.EventAte, game.EventReset:
	default:
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next := Sense(ev.Snapshot)
	// Manual resets carry no reward.
	if a.last != nil && !ev.Manual {
		reset := ev.Type == game.EventReset
		reward := Reward(a.last.FoodDistance, next.FoodDistance, ev.Type == game.EventAte, reset)
		if reset {
			a.q.Update(*a.last, a.lastAction, reward, nil)
		} else {
			a.q.Update(*a.last, a.lastAction, reward, &next)
		}
	}
	if ev.Type == game.EventReset {
		a.gamesPlayed++
		a.logger.Printf("autopilot: game %d over, score %d, total reward %.1f", a.gamesPlayed, ev.FinalScore, a.q.TotalReward())
	}

	action := a.q.GetAction(next)
	a.last, a.lastAction = &next, action
	a.push(input.KeyForDirection(action.Direction()))
}

// push keeps only the latest decision.
func (a *Autopilot) push(k input.Key) {
	for {
		select {
		case a.keys <- k:
			return
		default:
		}
		select {
		case <-a.keys:
		default:
		}
	}
}

// Keys makes the autopilot an input.Source.
func (a *Autopilot) Keys(ctx context.Context) <-chan input.Key {
	return input.Chan(a.keys).Keys(ctx)
}
