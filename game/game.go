package game

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"snake-torus/game/entity"
	"snake-torus/game/manager"
	"snake-torus/game/types"
)

// Options configures a Game. Zero values fall back to the defaults in
// package types.
type Options struct {
	Grid         types.Grid
	FoodLifetime time.Duration
	Seed         uint64
	Rand         manager.Rand
}

// Game is the state store. Mutating methods are meant to be called from
// a single goroutine (the Scheduler loop); Snapshot may be called from
// anywhere.
type Game struct {
	mu        sync.RWMutex
	state     *manager.StateManager
	current   *Snapshot
	listeners []Listener
}

// New builds a game already reset to the default layout at now.
func New(opts Options, now time.Time) *Game {
	if opts.Grid.Width == 0 || opts.Grid.Height == 0 {
		opts.Grid = types.Grid{Width: types.GridWidth, Height: types.GridHeight}
	}
	if opts.FoodLifetime == 0 {
		opts.FoodLifetime = types.FoodLifetime
	}
	if opts.Rand == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		opts.Rand = rand.New(rand.NewSource(seed))
	}

	collisionMgr := manager.NewCollisionManager(opts.Grid)
	foodMgr := manager.NewFoodManager(opts.Grid, collisionMgr, opts.Rand, opts.FoodLifetime)
	g := &Game{
		state: manager.NewStateManager(opts.Grid, collisionMgr, foodMgr),
	}
	g.state.Reset(now)
	g.publish(now)
	return g
}

// AddListener registers l for every subsequent event.
func (g *Game) AddListener(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// Snapshot returns the latest published state.
func (g *Game) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Reset restarts the game on request. The high score is kept.
func (g *Game) Reset(now time.Time) {
	before := g.Snapshot()
	g.mu.Lock()
	g.state.Reset(now)
	g.mu.Unlock()
	g.emit(Event{
		Type:        EventReset,
		At:          now,
		Snapshot:    g.publish(now),
		FinalScore:  before.Score,
		FinalLength: len(before.Snake),
		Manual:      true,
	})
}

// Turn requests a new heading. Reversals and invalid directions are
// ignored; it reports whether the heading changed.
func (g *Game) Turn(dir types.Direction, now time.Time) bool {
	g.mu.Lock()
	prev := g.current.Direction
	ok := g.state.Turn(dir)
	g.mu.Unlock()
	if !ok || prev == dir {
		return false
	}
	g.emit(Event{Type: EventTurned, At: now, Snapshot: g.publish(now)})
	return true
}

// Step runs one movement tick.
func (g *Game) Step(now time.Time) manager.StepResult {
	g.mu.Lock()
	res := g.state.Advance(now)
	g.mu.Unlock()

	snap := g.publish(now)
	switch res.Collision {
	case manager.SelfCollision:
		g.emit(Event{
			Type:        EventReset,
			At:          now,
			Snapshot:    snap,
			FinalScore:  res.FinalScore,
			FinalLength: res.FinalLength,
		})
	case manager.FoodCollision:
		g.emit(Event{Type: EventAte, At: now, Snapshot: snap, Foods: res.Eaten})
	default:
		g.emit(Event{Type: EventMoved, At: now, Snapshot: snap})
	}
	return res
}

// SpawnFood places one item at a free random cell.
func (g *Game) SpawnFood(now time.Time) (entity.Food, bool) {
	g.mu.Lock()
	food, ok := g.state.SpawnFood(now)
	g.mu.Unlock()
	if !ok {
		return food, false
	}
	g.emit(Event{Type: EventFoodSpawned, At: now, Snapshot: g.publish(now), Foods: []entity.Food{food}})
	return food, true
}

// ExpireDue removes every item whose own deadline has passed.
func (g *Game) ExpireDue(now time.Time) []entity.Food {
	g.mu.Lock()
	expired := g.state.ExpireDue(now)
	g.mu.Unlock()
	if len(expired) == 0 {
		return nil
	}
	g.emit(Event{Type: EventFoodExpired, At: now, Snapshot: g.publish(now), Foods: expired})
	return expired
}

// SweepOldest removes the last item in the list whatever its age.
func (g *Game) SweepOldest(now time.Time) (entity.Food, bool) {
	g.mu.Lock()
	food, ok := g.state.SweepOldest()
	g.mu.Unlock()
	if !ok {
		return food, false
	}
	g.emit(Event{Type: EventFoodExpired, At: now, Snapshot: g.publish(now), Foods: []entity.Food{food}})
	return food, true
}

// NextExpiry is the soonest food deadline, if any food exists.
func (g *Game) NextExpiry() (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state.NextExpiry()
}

// SetHighScore seeds the high score from history.
func (g *Game) SetHighScore(score int, now time.Time) {
	g.mu.Lock()
	g.state.SetHighScore(score)
	g.mu.Unlock()
	g.publish(now)
}

// Place replaces the snake and adds foods at the given cells. It is
// meant for scenarios and tests.
func (g *Game) Place(body []types.Point, dir types.Direction, foods []types.Point, now time.Time) {
	g.mu.Lock()
	g.state.PlaceSnake(body, dir)
	for _, p := range foods {
		g.state.PlaceFood(p, now)
	}
	g.mu.Unlock()
	g.publish(now)
}

func (g *Game) publish(now time.Time) *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	snake := g.state.GetSnake()
	snap := &Snapshot{
		Grid:      g.state.GetGrid(),
		Snake:     snake.Body,
		Direction: snake.Direction,
		Foods:     g.state.GetFoodList(),
		Score:     g.state.GetScore(),
		HighScore: g.state.GetHighScore(),
		Ticks:     g.state.GetTicks(),
		Resets:    g.state.GetResets(),
		At:        now,
	}
	g.current = snap
	return snap
}

func (g *Game) emit(ev Event) {
	g.mu.RLock()
	listeners := g.listeners
	g.mu.RUnlock()
	for _, l := range listeners {
		l(ev)
	}
}
