package entity

import (
	"time"

	"snake-torus/game/types"
)

// Food is a single item on the board. ID is unique within a process
// and lets the expiry queue find an item after it moved in the list.
type Food struct {
	ID        uint64
	Pos       types.Point
	SpawnedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the item is due at now.
func (f Food) Expired(now time.Time) bool {
	return !now.Before(f.ExpiresAt)
}

// Remaining is the time left before expiry, never negative.
func (f Food) Remaining(now time.Time) time.Duration {
	if d := f.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
