package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"snake-torus/game/types"
)

// Action indexes types.Directions: up, right, down, left.
type Action int

const (
	Up Action = iota
	Right
	Down
	Left
)

func (a Action) Direction() types.Direction {
	return types.Directions[a]
}

func actionFor(d types.Direction) Action {
	for i, dir := range types.Directions {
		if dir == d {
			return Action(i)
		}
	}
	return Up
}

// State is what the agent knows about the board.
type State struct {
	FoodDir      [2]int  // sign of the shortest torus offset to the nearest food
	FoodDistance int     // torus Manhattan distance, -1 without food
	Danger       [4]bool // body in the next cell, per action
	Heading      Action
}

func (s State) key() string {
	return fmt.Sprintf("%d,%d|%d%d%d%d|%d", s.FoodDir[0], s.FoodDir[1],
		boolToInt(s.Danger[0]), boolToInt(s.Danger[1]), boolToInt(s.Danger[2]), boolToInt(s.Danger[3]),
		s.Heading)
}

// allowed lists every action except reversing into the neck.
func (s State) allowed() []Action {
	reverse := actionFor(s.Heading.Direction().Opposite())
	out := make([]Action, 0, 3)
	for a := Up; a <= Left; a++ {
		if a != reverse {
			out = append(out, a)
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Rand is the randomness the agent explores with.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type QTable map[string]map[Action]float64

type QLearning struct {
	LearningRate float64
	Discount     float64
	Epsilon      float64

	mu          sync.RWMutex
	table       QTable
	rng         Rand
	totalReward float64
}

func NewQLearning(rng Rand) *QLearning {
	return &QLearning{
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.1,
		table:        make(QTable),
		rng:          rng,
	}
}

// GetAction explores with probability Epsilon, otherwise exploits.
func (q *QLearning) GetAction(state State) Action {
	allowed := state.allowed()
	if q.rng.Float64() < q.Epsilon {
		return allowed[q.rng.Intn(len(allowed))]
	}
	return q.BestAction(state)
}

// BestAction picks the highest valued allowed action. Ties go to the
// first in up, right, down, left order.
func (q *QLearning) BestAction(state State) Action {
	q.mu.RLock()
	defer q.mu.RUnlock()

	values := q.table[state.key()]
	allowed := state.allowed()
	best := allowed[0]
	bestValue := math.Inf(-1)
	for _, a := range allowed {
		if v := values[a]; v > bestValue {
			best, bestValue = a, v
		}
	}
	return best
}

// Update applies one Q-learning step. A nil next marks the end of an
// episode.
func (q *QLearning) Update(state State, action Action, reward float64, next *State) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var maxNext float64
	if next != nil {
		maxNext = math.Inf(-1)
		values := q.table[next.key()]
		for _, a := range next.allowed() {
			maxNext = math.Max(maxNext, values[a])
		}
	}

	key := state.key()
	if q.table[key] == nil {
		q.table[key] = make(map[Action]float64)
	}
	current := q.table[key][action]
	q.table[key][action] = current + q.LearningRate*(reward+q.Discount*maxNext-current)
	q.totalReward += reward
}

// Value reports the learned value of action in state.
func (q *QLearning) Value(state State, action Action) float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.table[state.key()][action]
}

func (q *QLearning) TotalReward() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.totalReward
}

// Reward scores a transition: eating beats everything, a reset is the
// worst outcome, otherwise progress towards food is rewarded.
func Reward(prevDist, nextDist int, ate, reset bool) float64 {
	switch {
	case reset:
		return -1.0
	case ate:
		return 1.0
	case prevDist < 0 || nextDist < 0:
		return 0
	case nextDist < prevDist:
		return 0.5
	case nextDist > prevDist:
		return -0.3
	default:
		return 0
	}
}

// SaveQTable writes the table as JSON, creating the directory if needed.
func (q *QLearning) SaveQTable(filename string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(q.table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal q-table: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write q-table: %w", err)
	}
	return nil
}

// LoadQTable replaces the table with the one stored at filename. A
// missing file leaves the table empty.
func (q *QLearning) LoadQTable(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read q-table: %w", err)
	}
	table := make(QTable)
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.table = table
	return nil
}
