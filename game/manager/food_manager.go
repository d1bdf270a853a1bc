package manager

import (
	"container/heap"
	"time"

	"snake-torus/game/entity"
	"snake-torus/game/types"
)

// Rand is the subset of golang.org/x/exp/rand.Rand used for placement.
type Rand interface {
	Intn(n int) int
}

// FoodManager owns the food list (newest first) and a deadline queue
// ordered by expiry.
type FoodManager struct {
	grid         types.Grid
	foodList     []entity.Food
	queue        expiryQueue
	queued       map[uint64]*expiryItem
	nextID       uint64
	lifetime     time.Duration
	rng          Rand
	collisionMgr *CollisionManager
}

func NewFoodManager(grid types.Grid, collisionMgr *CollisionManager, rng Rand, lifetime time.Duration) *FoodManager {
	return &FoodManager{
		grid:         grid,
		foodList:     make([]entity.Food, 0),
		queued:       make(map[uint64]*expiryItem),
		lifetime:     lifetime,
		rng:          rng,
		collisionMgr: collisionMgr,
	}
}

// Reset drops every item and places the single default food.
func (fm *FoodManager) Reset(now time.Time) {
	fm.foodList = fm.foodList[:0]
	fm.queue = fm.queue[:0]
	clear(fm.queued)
	fm.AddFood(types.DefaultFood, now)
}

// GenerateFood picks a random free cell. It resamples up to
// MaxSpawnAttempts times, then scans the board in order. ok is false
// when no cell is free.
func (fm *FoodManager) GenerateFood(snake *entity.Snake) (types.Point, bool) {
	for attempt := 0; attempt < types.MaxSpawnAttempts; attempt++ {
		food := types.Point{
			X: fm.rng.Intn(fm.grid.Width),
			Y: fm.rng.Intn(fm.grid.Height),
		}
		if fm.collisionMgr.ValidateSpawnPosition(food, snake, fm.foodList) {
			return food, true
		}
	}

	for y := 0; y < fm.grid.Height; y++ {
		for x := 0; x < fm.grid.Width; x++ {
			p := types.Point{X: x, Y: y}
			if fm.collisionMgr.ValidateSpawnPosition(p, snake, fm.foodList) {
				return p, true
			}
		}
	}
	return types.Point{}, false
}

// Spawn places one new item at a free cell.
func (fm *FoodManager) Spawn(now time.Time, snake *entity.Snake) (entity.Food, bool) {
	pos, ok := fm.GenerateFood(snake)
	if !ok {
		return entity.Food{}, false
	}
	return fm.AddFood(pos, now), true
}

// AddFood prepends an item at pos expiring one lifetime from now.
func (fm *FoodManager) AddFood(pos types.Point, now time.Time) entity.Food {
	fm.nextID++
	food := entity.Food{
		ID:        fm.nextID,
		Pos:       pos,
		SpawnedAt: now,
		ExpiresAt: now.Add(fm.lifetime),
	}

	fm.foodList = append(fm.foodList, entity.Food{})
	copy(fm.foodList[1:], fm.foodList)
	fm.foodList[0] = food

	item := &expiryItem{id: food.ID, expiresAt: food.ExpiresAt}
	heap.Push(&fm.queue, item)
	fm.queued[food.ID] = item
	return food
}

// RemoveAt removes every item sitting on pos and returns them.
func (fm *FoodManager) RemoveAt(pos types.Point) []entity.Food {
	var removed []entity.Food
	kept := fm.foodList[:0]
	for _, f := range fm.foodList {
		if f.Pos == pos {
			removed = append(removed, f)
			fm.dequeue(f.ID)
			continue
		}
		kept = append(kept, f)
	}
	fm.foodList = kept
	return removed
}

// RemoveOldest drops the last item of the list regardless of its own
// expiry. This is the fixed-rate sweep behaviour.
func (fm *FoodManager) RemoveOldest() (entity.Food, bool) {
	if len(fm.foodList) == 0 {
		return entity.Food{}, false
	}
	last := fm.foodList[len(fm.foodList)-1]
	fm.foodList = fm.foodList[:len(fm.foodList)-1]
	fm.dequeue(last.ID)
	return last, true
}

// ExpireDue removes every item whose deadline is at or before now, in
// deadline order.
func (fm *FoodManager) ExpireDue(now time.Time) []entity.Food {
	var expired []entity.Food
	for fm.queue.Len() > 0 && !now.Before(fm.queue[0].expiresAt) {
		item := heap.Pop(&fm.queue).(*expiryItem)
		delete(fm.queued, item.id)
		for i, f := range fm.foodList {
			if f.ID == item.id {
				expired = append(expired, f)
				fm.foodList = append(fm.foodList[:i], fm.foodList[i+1:]...)
				break
			}
		}
	}
	return expired
}

// NextExpiry is the soonest deadline in the queue.
func (fm *FoodManager) NextExpiry() (time.Time, bool) {
	if fm.queue.Len() == 0 {
		return time.Time{}, false
	}
	return fm.queue[0].expiresAt, true
}

// GetFoodList returns a copy of the list, newest first.
func (fm *FoodManager) GetFoodList() []entity.Food {
	out := make([]entity.Food, len(fm.foodList))
	copy(out, fm.foodList)
	return out
}

func (fm *FoodManager) dequeue(id uint64) {
	item, ok := fm.queued[id]
	if !ok {
		return
	}
	heap.Remove(&fm.queue, item.index)
	delete(fm.queued, id)
}

type expiryItem struct {
	id        uint64
	expiresAt time.Time
	index     int
}

// expiryQueue implements heap.Interface; ties keep insertion order.
type expiryQueue []*expiryItem

func (q expiryQueue) Len() int { return len(q) }

func (q expiryQueue) Less(i, j int) bool {
	if q[i].expiresAt.Equal(q[j].expiresAt) {
		return q[i].id < q[j].id
	}
	return q[i].expiresAt.Before(q[j].expiresAt)
}

func (q expiryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *expiryQueue) Push(x any) {
	item := x.(*expiryItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
