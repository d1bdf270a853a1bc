package manager

import (
	"time"

	"snake-torus/game/entity"
	"snake-torus/game/types"
)

// StepResult describes what one movement tick did.
type StepResult struct {
	Collision CollisionType
	// Head is where the head moved to. On FoodCollision that is the cell
	// the food was on; the snake does not move again on the same tick.
	Head  types.Point
	Eaten []entity.Food

	// Score and length the game had when it was reset. Only set when
	// Collision is SelfCollision.
	FinalScore  int
	FinalLength int
}

// StateManager is the mutable game core: snake, foods, score. It is not
// safe for concurrent use; game.Game serialises access and publishes
// snapshots of it.
type StateManager struct {
	grid         types.Grid
	collisionMgr *CollisionManager
	foodManager  *FoodManager
	snake        *entity.Snake
	score        int
	highScore    int
	ticks        uint64
	resets       int
}

func NewStateManager(grid types.Grid, collisionMgr *CollisionManager, foodManager *FoodManager) *StateManager {
	return &StateManager{
		grid:         grid,
		collisionMgr: collisionMgr,
		foodManager:  foodManager,
		snake:        entity.NewSnake(types.DefaultSnake(), types.DefaultDirection),
	}
}

// Reset restores the default snake, food, direction and a zero score.
// The high score survives.
func (sm *StateManager) Reset(now time.Time) {
	sm.snake = entity.NewSnake(types.DefaultSnake(), types.DefaultDirection)
	sm.foodManager.Reset(now)
	sm.score = 0
}

// Turn applies a requested heading, refusing reversals.
func (sm *StateManager) Turn(dir types.Direction) bool {
	return sm.snake.SetDirection(dir)
}

// Advance moves the snake one cell. Running into itself resets the
// game; landing on food scores and keeps the tail so the snake grows.
func (sm *StateManager) Advance(now time.Time) StepResult {
	sm.ticks++
	newHead := sm.snake.NextHead(sm.grid)

	switch sm.collisionMgr.CheckCollision(newHead, sm.snake, sm.foodManager.foodList) {
	case SelfCollision:
		result := StepResult{
			Collision:   SelfCollision,
			Head:        newHead,
			FinalScore:  sm.score,
			FinalLength: sm.snake.Len(),
		}
		sm.resets++
		sm.Reset(now)
		return result

	case FoodCollision:
		sm.snake.Move(newHead)
		eaten := sm.foodManager.RemoveAt(newHead)
		sm.UpdateScore(sm.score + 1)
		return StepResult{Collision: FoodCollision, Head: newHead, Eaten: eaten}

	default:
		sm.snake.Move(newHead)
		sm.snake.RemoveTail()
		return StepResult{Collision: NoCollision, Head: newHead}
	}
}

func (sm *StateManager) UpdateScore(score int) {
	sm.score = score
	if score > sm.highScore {
		sm.highScore = score
	}
}

// SetHighScore seeds the high score, e.g. from persisted history.
func (sm *StateManager) SetHighScore(score int) {
	if score > sm.highScore {
		sm.highScore = score
	}
}

func (sm *StateManager) SpawnFood(now time.Time) (entity.Food, bool) {
	return sm.foodManager.Spawn(now, sm.snake)
}

func (sm *StateManager) ExpireDue(now time.Time) []entity.Food {
	return sm.foodManager.ExpireDue(now)
}

func (sm *StateManager) SweepOldest() (entity.Food, bool) {
	return sm.foodManager.RemoveOldest()
}

func (sm *StateManager) NextExpiry() (time.Time, bool) {
	return sm.foodManager.NextExpiry()
}

// PlaceSnake replaces the body and heading. Used to set up scenarios.
func (sm *StateManager) PlaceSnake(body []types.Point, dir types.Direction) {
	sm.snake = entity.NewSnake(body, dir)
}

// PlaceFood adds an item at pos as if it had spawned at now.
func (sm *StateManager) PlaceFood(pos types.Point, now time.Time) entity.Food {
	return sm.foodManager.AddFood(pos, now)
}

func (sm *StateManager) GetSnake() *entity.Snake {
	return sm.snake.Clone()
}

func (sm *StateManager) GetFoodList() []entity.Food {
	return sm.foodManager.GetFoodList()
}

func (sm *StateManager) GetScore() int {
	return sm.score
}

func (sm *StateManager) GetHighScore() int {
	return sm.highScore
}

func (sm *StateManager) GetTicks() uint64 {
	return sm.ticks
}

func (sm *StateManager) GetResets() int {
	return sm.resets
}

func (sm *StateManager) GetGrid() types.Grid {
	return sm.grid
}
