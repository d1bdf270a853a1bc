package game

import (
	"time"

	"snake-torus/game/entity"
)

// EventType identifies a state transition.
type EventType int

const (
	EventMoved EventType = iota
	EventAte
	EventReset
	EventFoodSpawned
	EventFoodExpired
	EventTurned
)

func (t EventType) String() string {
	switch t {
	case EventMoved:
		return "moved"
	case EventAte:
		return "ate"
	case EventReset:
		return "reset"
	case EventFoodSpawned:
		return "food_spawned"
	case EventFoodExpired:
		return "food_expired"
	case EventTurned:
		return "turned"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after the snapshot it carries has
// been published.
type Event struct {
	Type     EventType
	At       time.Time
	Snapshot *Snapshot

	// Foods eaten, spawned or expired by this transition.
	Foods []entity.Food

	// Set on EventReset.
	FinalScore  int
	FinalLength int
	Manual      bool
}

// Listener observes events. It runs on the goroutine that caused the
// transition and must not block.
type Listener func(Event)
