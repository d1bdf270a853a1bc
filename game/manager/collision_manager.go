package manager

import (
	"snake-torus/game/entity"
	"snake-torus/game/types"
)

// CollisionType represents the type of collision
type CollisionType int

const (
	NoCollision CollisionType = iota
	SelfCollision
	FoodCollision
)

func (c CollisionType) String() string {
	switch c {
	case SelfCollision:
		return "self"
	case FoodCollision:
		return "food"
	default:
		return "none"
	}
}

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// CheckCollision classifies what the snake runs into at pos. Self
// collision takes precedence over food.
func (cm *CollisionManager) CheckCollision(pos types.Point, snake *entity.Snake, foods []entity.Food) CollisionType {
	if cm.IsSelfCollision(pos, snake) {
		return SelfCollision
	}
	if cm.IsFoodCollision(pos, foods) {
		return FoodCollision
	}
	return NoCollision
}

// IsSelfCollision checks pos against every current segment, tail
// included.
func (cm *CollisionManager) IsSelfCollision(pos types.Point, snake *entity.Snake) bool {
	return snake.Occupies(pos)
}

// IsFoodCollision checks if a position collides with any food
func (cm *CollisionManager) IsFoodCollision(pos types.Point, foods []entity.Food) bool {
	for _, f := range foods {
		if f.Pos == pos {
			return true
		}
	}
	return false
}

// ValidateSpawnPosition checks if a position is free for a new food item
func (cm *CollisionManager) ValidateSpawnPosition(pos types.Point, snake *entity.Snake, foods []entity.Food) bool {
	if !cm.grid.Contains(pos) {
		return false
	}
	if snake != nil && snake.Occupies(pos) {
		return false
	}
	return !cm.IsFoodCollision(pos, foods)
}
